package chat

import (
	"time"

	"go.uber.org/zap"
)

// DefaultReplyDelay is how long the assistant "thinks" before answering.
const DefaultReplyDelay = time.Second

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithReplyDelay sets the fixed delay before each reply. Negative values are ignored.
func WithReplyDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithResponder sets the reply generator.
func WithResponder(responder Responder) Option {
	return func(s *Service) {
		s.responder = responder
	}
}

// WithIDGenerator overrides message id generation.
func WithIDGenerator(next func() string) Option {
	return func(s *Service) {
		if next != nil {
			s.newID = next
		}
	}
}
