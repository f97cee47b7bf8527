package service

import (
	"context"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/polyhx/event-api/entity"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slices"
)

// SearchQuery mirrors the paged data-table request the admin UI sends.
type SearchQuery struct {
	Term    string   `schema:"term"`
	Schools []string `schema:"schools"`
	Start   int64    `schema:"start"`
	Length  int64    `schema:"length"`
}

type SearchResult struct {
	Total     int64              `json:"total"`
	Attendees []*entity.Attendee `json:"attendees"`
}

// SearchStrategy ranks and pages a set of attendees. Two implementations
// exist; the active one is a configuration choice.
type SearchStrategy interface {
	Search(ctx context.Context, IDs []primitive.ObjectID, query SearchQuery) (*SearchResult, error)
}

// PlainSearch pages straight out of the store in document order.
type PlainSearch struct {
	attendeeRepository AttendeeRepository
}

func NewPlainSearch(attendeeRepository AttendeeRepository) *PlainSearch {
	return &PlainSearch{attendeeRepository: attendeeRepository}
}

func (s *PlainSearch) Search(ctx context.Context, IDs []primitive.ObjectID, query SearchQuery) (*SearchResult, error) {
	length := query.Length
	if length <= 0 {
		length = 20
	}

	attendees, total, err := s.attendeeRepository.FindManyByIDsPaged(ctx, IDs, query.Schools, query.Start, length)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Total:     total,
		Attendees: attendees,
	}, nil
}

// FuzzySearch loads the candidate set and ranks it by string similarity of
// the search term against email and school, then pages in memory.
type FuzzySearch struct {
	attendeeRepository AttendeeRepository
}

func NewFuzzySearch(attendeeRepository AttendeeRepository) *FuzzySearch {
	return &FuzzySearch{attendeeRepository: attendeeRepository}
}

func (s *FuzzySearch) Search(ctx context.Context, IDs []primitive.ObjectID, query SearchQuery) (*SearchResult, error) {
	attendees, err := s.attendeeRepository.FindManyByIDs(ctx, IDs)
	if err != nil {
		return nil, err
	}

	if len(query.Schools) > 0 {
		filtered := attendees[:0]
		for _, a := range attendees {
			if slices.Contains(query.Schools, a.School) {
				filtered = append(filtered, a)
			}
		}
		attendees = filtered
	}

	if term := strings.ToLower(strings.TrimSpace(query.Term)); term != "" {
		type scored struct {
			attendee *entity.Attendee
			score    float32
		}

		ranked := make([]scored, 0, len(attendees))
		for _, a := range attendees {
			score := similarity(term, a.Email)
			if s := similarity(term, a.School); s > score {
				score = s
			}
			ranked = append(ranked, scored{attendee: a, score: score})
		}

		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].score > ranked[j].score
		})

		attendees = attendees[:0]
		for _, r := range ranked {
			attendees = append(attendees, r.attendee)
		}
	}

	total := int64(len(attendees))

	start := query.Start
	if start > total {
		start = total
	}
	length := query.Length
	if length <= 0 {
		length = 20
	}
	end := start + length
	if end > total {
		end = total
	}

	return &SearchResult{
		Total:     total,
		Attendees: attendees[start:end],
	}, nil
}

func similarity(term, candidate string) float32 {
	if candidate == "" {
		return 0
	}
	score, err := edlib.StringsSimilarity(term, strings.ToLower(candidate), edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return score
}
