package pdf

import "eurocar/orcamentos/internal/domain/quote"

//go:generate mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mock_pdf

type Generator interface {
	Generate(q *quote.Quote) ([]byte, error)
}
