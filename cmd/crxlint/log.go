package main

import "github.com/jamesainslie/crxlint/pkg/crxlint/logging"

var logger = logging.Get("cli")
