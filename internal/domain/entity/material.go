package entity

import "time"

// Material representa un insumo (materia prima) de una finca.
// Inmutable una vez referenciado por eventos del libro; no se elimina mientras existan líneas que lo usen.
type Material struct {
	ID        string
	FarmID    string
	Code      string // código único por finca
	Name      string
	Unit      string // kg, l, und
	CreatedAt time.Time
	UpdatedAt time.Time
}
