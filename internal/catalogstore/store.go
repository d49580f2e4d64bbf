package catalogstore

import "context"

// Store is the authoritative-store boundary the Catalog depends on. It is
// an interface, not a concrete *gorm.DB dependency, so tests can substitute
// an in-memory fake instead of standing up Postgres (§4.3's "safe to call
// concurrently" contract is the Catalog's job, not the Store's).
type Store interface {
	// LoadClients, LoadPizzas, LoadStations back the startup bulk load.
	LoadClients(ctx context.Context) ([]ClientRow, error)
	LoadPizzas(ctx context.Context) ([]PizzaRow, error)
	LoadStations(ctx context.Context) ([]StationRow, error)

	// FindClient and FindPizza back the lazy single-entity refill path.
	// Stations are loaded once at startup and never refilled (§4.3).
	FindClient(ctx context.Context, id int) (ClientRow, bool, error)
	FindPizza(ctx context.Context, name, size string) (PizzaRow, bool, error)
}
