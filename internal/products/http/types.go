package http

import "github.com/productstack/products-backend/internal/products/service"

// Handler bundles the dependencies for products HTTP endpoints.
type Handler struct {
	svc *service.ProductService
}

func New(svc *service.ProductService) *Handler {
	return &Handler{svc: svc}
}
