package service

import "bursar/pkg/platform/sentinel"

var errNotCached = sentinel.ErrNotFound
