package server

import "context"

type httpLogWriter struct {
	ctx context.Context
}
