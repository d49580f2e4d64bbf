// Command seed populates the authoritative store with sample clients,
// pizzas, and stations for local development, the way the original
// bring-up tooling seeded its own test branch.
package main

import (
	"log"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/meline-schndr/pizzaline/internal/catalogstore"
	"github.com/meline-schndr/pizzaline/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  no .env file found, using environment variables as-is")
	}

	cfg := config.Load()

	store, err := catalogstore.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ failed to connect to the authoritative store: %v", err)
	}
	defer store.Close()

	log.Println("✅ connected to the authoritative store")

	if err := seedClients(store.DB()); err != nil {
		log.Fatalf("❌ seeding clients: %v", err)
	}
	if err := seedPizzas(store.DB()); err != nil {
		log.Fatalf("❌ seeding pizzas: %v", err)
	}
	if err := seedStations(store.DB()); err != nil {
		log.Fatalf("❌ seeding stations: %v", err)
	}

	log.Println("✅ seed complete")
}

func seedClients(db *gorm.DB) error {
	clients := []catalogstore.ClientRow{
		{ID: 100, Distance: 5},
		{ID: 530080, Distance: 12},
		{ID: 201, Distance: 20},
	}
	for _, c := range clients {
		if err := db.Where(`"ID" = ?`, c.ID).FirstOrCreate(&c).Error; err != nil {
			return err
		}
		log.Printf("✅ client %d (distance %dmin)", c.ID, c.Distance)
	}
	return nil
}

func seedPizzas(db *gorm.DB) error {
	pizzas := []catalogstore.PizzaRow{
		{Nom: "Reine", Taille: "G", Composition: "RJVB\n", TPsProd: 10, Prix: 9.5},
		{Nom: "Reine", Taille: "M", Composition: "RJVB\n", TPsProd: 8, Prix: 7.5},
		{Nom: "Veggie", Taille: "G", Composition: "JV\n", TPsProd: 12, Prix: 8.0},
		{Nom: "4_Fromages", Taille: "G", Composition: "B\n", TPsProd: 14, Prix: 10.0},
		{Nom: "Chevre", Taille: "M", Composition: "B\n", TPsProd: 9, Prix: 8.5},
	}
	for _, p := range pizzas {
		if err := db.Where(`"Nom" = ? AND "Taille" = ?`, p.Nom, p.Taille).FirstOrCreate(&p).Error; err != nil {
			return err
		}
		log.Printf("✅ pizza %s/%s (%dmin)", p.Nom, p.Taille, p.TPsProd)
	}
	return nil
}

func seedStations(db *gorm.DB) error {
	stations := []catalogstore.StationRow{
		{Poste: 1, Capacite: 30, Disponibilite: true, Taille: "", Restriction: "Veggie,Chevre"},
		{Poste: 2, Capacite: 25, Disponibilite: true, Taille: "", Restriction: "---"},
		{Poste: 3, Capacite: 18, Disponibilite: true, Taille: "G", Restriction: "Chevre,4_Fromages"},
		{Poste: 4, Capacite: 20, Disponibilite: true, Taille: "M", Restriction: "---"},
		{Poste: 5, Capacite: 27, Disponibilite: false, Taille: "M", Restriction: "---"},
		{Poste: 6, Capacite: 15, Disponibilite: true, Taille: "", Restriction: "---"},
	}
	for _, s := range stations {
		if err := db.Where(`"Poste" = ?`, s.Poste).FirstOrCreate(&s).Error; err != nil {
			return err
		}
		log.Printf("✅ station %d (cap %d)", s.Poste, s.Capacite)
	}
	return nil
}
