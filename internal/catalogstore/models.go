// Package catalogstore is the authoritative-store boundary (§4.3, §6): the
// relational tables the Catalog bulk-loads at startup and refills from on a
// single-entity miss. Everything here is a thin GORM row mapping — no
// business logic lives in this package.
package catalogstore

// ClientRow mirrors the Client(ID int, Distance int) table.
type ClientRow struct {
	ID       int `gorm:"column:ID;primaryKey"`
	Distance int `gorm:"column:Distance"`
}

// TableName pins the row to the spec's literal table name.
func (ClientRow) TableName() string { return "Client" }

// PizzaRow mirrors Pizza(Nom text, Taille text, Composition text, TPsProd int, Prix numeric).
// Identity is the (Nom,Taille) pair, never a surrogate key.
type PizzaRow struct {
	Nom         string  `gorm:"column:Nom;primaryKey"`
	Taille      string  `gorm:"column:Taille;primaryKey"`
	Composition string  `gorm:"column:Composition"`
	TPsProd     int     `gorm:"column:TPsProd"`
	Prix        float64 `gorm:"column:Prix"`
}

func (PizzaRow) TableName() string { return "Pizza" }

// StationRow mirrors Production(Poste int, Capacite int, Disponibilite bool, Taille text, Restriction text).
type StationRow struct {
	Poste         int    `gorm:"column:Poste;primaryKey"`
	Capacite      int    `gorm:"column:Capacite"`
	Disponibilite bool   `gorm:"column:Disponibilite"`
	Taille        string `gorm:"column:Taille"`
	Restriction   string `gorm:"column:Restriction"`
}

func (StationRow) TableName() string { return "Production" }
