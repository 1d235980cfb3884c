package sonos

import (
	"context"
	"log"
	"time"

	"github.com/strefethen/home-hub-go/internal/audit"
	"github.com/strefethen/home-hub-go/internal/discovery"
	"github.com/strefethen/home-hub-go/internal/sonos/soap"
)

// RoomFinder locates a speaker endpoint by room name. A nil endpoint with a
// nil error means the room was not found on the network.
type RoomFinder interface {
	Find(ctx context.Context, roomName string, timeout time.Duration) (*discovery.Endpoint, error)
}

// Recorder accepts audit events. Writes must never fail the caller.
type Recorder interface {
	Record(input audit.WriteEventInput)
}

// Publisher pushes orchestration events to connected listeners.
type Publisher interface {
	Publish(eventType string, payload map[string]any)
}

type noopRecorder struct{}

func (noopRecorder) Record(audit.WriteEventInput) {}

type noopPublisher struct{}

func (noopPublisher) Publish(string, map[string]any) {}

// Service orchestrates speaker grouping and playback sequences. Speaker
// handles are resolved fresh on every call and never cached across requests.
type Service struct {
	directory        RoomFinder
	client           *soap.Client
	discoveryTimeout time.Duration
	recorder         Recorder
	publisher        Publisher
	logger           *log.Logger
}

type ServiceOption func(*Service)

func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService builds the orchestrator. discoveryTimeout bounds how long a
// single room lookup may take.
func NewService(directory RoomFinder, client *soap.Client, discoveryTimeout time.Duration, opts ...ServiceOption) *Service {
	s := &Service{
		directory:        directory,
		client:           client,
		discoveryTimeout: discoveryTimeout,
		recorder:         noopRecorder{},
		publisher:        noopPublisher{},
		logger:           log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
