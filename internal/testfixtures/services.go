package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/adapters"
	"github.com/example/room-reservations/internal/persistence/memory"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// Services bundles the application services wired over one store.
type Services struct {
	Store        persistence.Store
	Rooms        *application.RoomService
	Equipment    *application.EquipmentService
	Reservations *application.ReservationService
}

// NewServices wires every service over store the same way the binary does.
// A nil store is replaced by a fresh in-memory store.
func (f *ServiceFactory) NewServices(store persistence.Store, logger *slog.Logger) Services {
	if store == nil {
		store = memory.New()
	}
	repos := adapters.ForStore(store)
	now := f.Clock.NowFunc()
	idGen := f.IDGenerator.NextFunc()

	rooms := application.NewRoomServiceWithLogger(repos.Rooms, repos.Equipment, now, logger)
	equipment := application.NewEquipmentServiceWithLogger(repos.Equipment, idGen, now, logger)
	equipment.OnChange(rooms.InvalidateCache)
	reservations := application.NewReservationServiceWithLogger(rooms, repos.Reservations, idGen, now, logger)
	rooms.UseReservations(reservations)

	return Services{
		Store:        store,
		Rooms:        rooms,
		Equipment:    equipment,
		Reservations: reservations,
	}
}

// ReservationServiceDeps captures dependencies for constructing a reservation service.
type ReservationServiceDeps struct {
	Rooms        application.RoomLookup
	Reservations application.ReservationRepository
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewReservationService builds a reservation service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewReservationService(deps ReservationServiceDeps) *application.ReservationService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewReservationServiceWithLogger(
		deps.Rooms,
		deps.Reservations,
		idGen,
		now,
		deps.Logger,
	)
}

// RoomServiceDeps captures dependencies for constructing a room service.
type RoomServiceDeps struct {
	Rooms     application.RoomRepository
	Equipment application.EquipmentRepository
	Now       func() time.Time
	Logger    *slog.Logger
}

// NewRoomService builds a room service using the supplied dependencies.
func (f *ServiceFactory) NewRoomService(deps RoomServiceDeps) *application.RoomService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewRoomServiceWithLogger(
		deps.Rooms,
		deps.Equipment,
		now,
		deps.Logger,
	)
}
