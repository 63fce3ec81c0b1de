package dto

import "time"

// CreateMaterialRequest entrada para crear un insumo.
type CreateMaterialRequest struct {
	Code string `json:"code" validate:"required,min=1,max=50"`
	Name string `json:"name" validate:"required,min=1,max=200"`
	Unit string `json:"unit"`
}

// MaterialResponse salida de un insumo.
type MaterialResponse struct {
	ID        string    `json:"id"`
	FarmID    string    `json:"farm_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MaterialListResponse lista paginada de insumos.
type MaterialListResponse struct {
	Items []MaterialResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
