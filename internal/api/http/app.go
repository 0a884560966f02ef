package http

import (
	"time"

	"go.uber.org/zap"
)

// AppDependencies carries the ambient collaborators of the HTTP app.
type AppDependencies struct {
	Logger         *zap.Logger
	RequestTimeout time.Duration
}
