package interfaces

import (
	"github.com/bobmcallan/folio/internal/models"
	"github.com/bobmcallan/folio/internal/services/loader"
)

// PortfolioEngine turns the three exports into a portfolio snapshot.
type PortfolioEngine interface {
	Run(in loader.Inputs) (*models.Portfolio, error)
}
