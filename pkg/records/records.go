// Package records provides the row data shown by the virtual table: a
// deterministic generator of mock employee records and a minimal indexable
// [Source] abstraction the renderers read from.
package records

import (
	"fmt"
	"math/rand/v2"
)

// Record is one table row.
type Record struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Age        int     `json:"age"`
	City       string  `json:"city"`
	Company    string  `json:"company"`
	Salary     float64 `json:"salary"`
	Department string  `json:"department"`
}

// Source is an ordered, integer-indexed sequence of records.
type Source interface {
	Len() int
	At(i int) Record
}

// Slice is a Source backed by a slice.
type Slice []Record

// Len implements Source.
func (s Slice) Len() int { return len(s) }

// At implements Source.
func (s Slice) At(i int) Record { return s[i] }

var (
	names = []string{
		"João Silva", "Maria Santos", "Pedro Oliveira", "Ana Costa",
		"Carlos Ferreira", "Lucia Pereira", "Rafael Lima", "Fernanda Souza",
	}
	cities = []string{
		"São Paulo", "Rio de Janeiro", "Belo Horizonte", "Salvador",
		"Brasília", "Fortaleza", "Recife", "Porto Alegre",
	}
	companies = []string{
		"Tech Corp", "Inovação Ltda", "Digital Solutions", "Future Systems",
		"Smart Tech", "Data Analytics", "Cloud Services", "AI Solutions",
	}
	departments = []string{
		"Desenvolvimento", "Marketing", "Vendas", "RH",
		"Financeiro", "Operações", "Suporte", "Design",
	}
)

const (
	minAge     = 20
	ageSpan    = 40
	minSalary  = 30000
	salarySpan = 100000
)

// Generate returns count records. Names, cities, companies and departments
// cycle with the index; age and salary are drawn from a PCG source seeded with
// seed, so equal seeds give equal data.
func Generate(count int, seed uint64) Slice {
	if count <= 0 {
		return Slice{}
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make(Slice, count)
	for i := range out {
		id := i + 1
		out[i] = Record{
			ID:         id,
			Name:       names[i%len(names)],
			Email:      fmt.Sprintf("user%d@email.com", id),
			Age:        minAge + rng.IntN(ageSpan),
			City:       cities[i%len(cities)],
			Company:    companies[i%len(companies)],
			Salary:     float64(minSalary + rng.IntN(salarySpan)),
			Department: departments[i%len(departments)],
		}
	}
	return out
}
