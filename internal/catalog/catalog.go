// Package catalog holds the process-lifetime, in-memory snapshot of
// clients, pizzas, and stations (spec §4.3): O(1) lookups backed by a
// Redis read-through cache, with synchronous single-row refill from the
// authoritative store on a client/pizza miss. Stations are loaded once at
// Bootstrap and never refilled.
//
// Catalog carries no lock of its own. Per §5, the single mutex in
// sharedctx serializes every access across the Catalog, the Production
// Manager, and Stats — every exported method here requires that outer
// lock to already be held.
package catalog

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/meline-schndr/pizzaline/internal/catalogstore"
	"github.com/meline-schndr/pizzaline/internal/redisutil"
	"github.com/meline-schndr/pizzaline/internal/station"
)

// Client is the catalog's view of a customer: travel time in minutes.
type Client struct {
	ID       int
	Distance int
}

// Pizza is identified by the (name, size) pair.
type Pizza struct {
	Name        string
	Size        string
	Composition string
	ProdTime    int
	Price       float64
}

type pizzaKey struct {
	name string
	size string
}

const cacheTTL = 10 * time.Minute

// Catalog is the shared client/pizza/station snapshot.
type Catalog struct {
	store catalogstore.Store
	cache *redisutil.Client // nil disables the cache tier

	clients  map[int]Client
	pizzas   map[pizzaKey]Pizza
	stations []*station.Station

	storeDown bool // set once, when the authoritative store proved unreachable at Bootstrap
}

// New constructs an empty Catalog. cache may be nil (cache tier disabled,
// refills go straight to the store).
func New(store catalogstore.Store, cache *redisutil.Client) *Catalog {
	return &Catalog{
		store:   store,
		cache:   cache,
		clients: make(map[int]Client),
		pizzas:  make(map[pizzaKey]Pizza),
	}
}

// Bootstrap performs the bulk load of §4.3. If the store is unreachable
// and useDefaultStations is set, it falls back to the built-in layout of
// §6 for stations only — clients and pizzas remain empty and are treated
// as hard misses (no default data exists for them) until a later refill
// that happens to succeed.
func (c *Catalog) Bootstrap(ctx context.Context, useDefaultStations bool) error {
	clientRows, err := c.store.LoadClients(ctx)
	if err != nil {
		log.Printf("⚠️  catalog bootstrap: clients unavailable (%v), starting empty", err)
		c.storeDown = true
	} else {
		for _, row := range clientRows {
			c.clients[row.ID] = Client{ID: row.ID, Distance: row.Distance}
		}
	}

	pizzaRows, err := c.store.LoadPizzas(ctx)
	if err != nil {
		log.Printf("⚠️  catalog bootstrap: pizzas unavailable (%v), starting empty", err)
		c.storeDown = true
	} else {
		for _, row := range pizzaRows {
			key := pizzaKey{name: row.Nom, size: row.Taille}
			c.pizzas[key] = Pizza{
				Name:        row.Nom,
				Size:        row.Taille,
				Composition: row.Composition,
				ProdTime:    row.TPsProd,
				Price:       row.Prix,
			}
		}
	}

	stationRows, err := c.store.LoadStations(ctx)
	switch {
	case err != nil && useDefaultStations:
		log.Printf("⚠️  catalog bootstrap: stations unavailable (%v), falling back to default layout", err)
		c.stations = defaultStations()
	case err != nil:
		log.Printf("❌ catalog bootstrap: stations unavailable (%v), no fallback configured", err)
		return err
	default:
		c.stations = make([]*station.Station, 0, len(stationRows))
		for _, row := range stationRows {
			c.stations = append(c.stations, station.New(row.Poste, row.Capacite, row.Disponibilite, row.Taille, row.Restriction))
		}
	}

	log.Printf("✅ catalog loaded: %d clients, %d pizzas, %d stations", len(c.clients), len(c.pizzas), len(c.stations))
	return nil
}

// Stations returns the station set, for the Production Manager to adopt.
func (c *Catalog) Stations() []*station.Station {
	return c.stations
}

// FindClient returns the client by id, refilling from the authoritative
// store on a miss. A miss that also misses at the store (or the store is
// down) reports ok=false — a hard miss per §4.3.
func (c *Catalog) FindClient(ctx context.Context, id int) (Client, bool) {
	if client, ok := c.clients[id]; ok {
		return client, true
	}

	if c.cache != nil {
		var cached Client
		if err := c.cache.GetJSON(ctx, clientCacheKey(id), &cached); err == nil {
			c.clients[id] = cached
			return cached, true
		}
	}

	row, found, err := c.store.FindClient(ctx, id)
	if err != nil {
		log.Printf("⚠️  client refill %d: store error (%v), treating as miss", id, err)
		return Client{}, false
	}
	if !found {
		return Client{}, false
	}

	client := Client{ID: row.ID, Distance: row.Distance}
	c.clients[id] = client
	if c.cache != nil {
		if err := c.cache.SetJSON(ctx, clientCacheKey(id), client, cacheTTL); err != nil {
			log.Printf("⚠️  client cache write %d failed: %v", id, err)
		}
	}
	return client, true
}

// FindPizza returns the pizza by (name,size), refilling on a miss the same
// way FindClient does.
func (c *Catalog) FindPizza(ctx context.Context, name, size string) (Pizza, bool) {
	key := pizzaKey{name: name, size: size}
	if pizza, ok := c.pizzas[key]; ok {
		return pizza, true
	}

	if c.cache != nil {
		var cached Pizza
		if err := c.cache.GetJSON(ctx, pizzaCacheKey(name, size), &cached); err == nil {
			c.pizzas[key] = cached
			return cached, true
		}
	}

	row, found, err := c.store.FindPizza(ctx, name, size)
	if err != nil {
		log.Printf("⚠️  pizza refill %s/%s: store error (%v), treating as miss", name, size, err)
		return Pizza{}, false
	}
	if !found {
		return Pizza{}, false
	}

	pizza := Pizza{Name: row.Nom, Size: row.Taille, Composition: row.Composition, ProdTime: row.TPsProd, Price: row.Prix}
	c.pizzas[key] = pizza
	if c.cache != nil {
		if err := c.cache.SetJSON(ctx, pizzaCacheKey(name, size), pizza, cacheTTL); err != nil {
			log.Printf("⚠️  pizza cache write %s/%s failed: %v", name, size, err)
		}
	}
	return pizza, true
}

func clientCacheKey(id int) string {
	return "pizzaline:client:" + strconv.Itoa(id)
}

func pizzaCacheKey(name, size string) string {
	return "pizzaline:pizza:" + name + ":" + size
}
