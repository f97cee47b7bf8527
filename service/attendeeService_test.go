package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/polyhx/event-api/apperr"
	"github.com/polyhx/event-api/entity"
	"github.com/polyhx/event-api/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type attendeeFixture struct {
	attendees *memAttendeeRepository
	resolver  *fakeResolver
	storage   *memStorage
	service   *AttendeeService
}

func newAttendeeFixture() *attendeeFixture {
	attendees := newMemAttendeeRepository()
	resolver := &fakeResolver{users: make(map[string]*identity.User)}
	store := newMemStorage()
	return &attendeeFixture{
		attendees: attendees,
		resolver:  resolver,
		storage:   store,
		service:   NewAttendeeService(attendees, resolver, store, NewPlainSearch(attendees)),
	}
}

func TestCreateAttendee(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with resume upload", func(t *testing.T) {
		f := newAttendeeFixture()

		created, err := f.service.Create(ctx, entity.Attendee{UserID: "u1"}, &Upload{
			Filename:    "resume.pdf",
			ContentType: "application/pdf",
			Content:     strings.NewReader("%PDF"),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.CV)
	})

	t.Run("second create for the same user fails", func(t *testing.T) {
		f := newAttendeeFixture()

		_, err := f.service.Create(ctx, entity.Attendee{UserID: "u1"}, nil)
		require.NoError(t, err)

		_, err = f.service.Create(ctx, entity.Attendee{UserID: "u1"}, nil)
		assert.ErrorIs(t, err, apperr.ErrAttendeeExists)
	})

	t.Run("concurrent creates for the same user", func(t *testing.T) {
		f := newAttendeeFixture()

		const creates = 8
		var wg sync.WaitGroup
		errs := make([]error, creates)
		for i := 0; i < creates; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.service.Create(ctx, entity.Attendee{UserID: "u1"}, nil)
			}(i)
		}
		wg.Wait()

		var succeeded int
		for _, err := range errs {
			if err == nil {
				succeeded++
			}
		}
		assert.Equal(t, 1, succeeded)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only the provided fields", func(t *testing.T) {
		f := newAttendeeFixture()
		f.attendees.add(entity.Attendee{UserID: "u1", School: "old", Github: "gh"})

		school := "polytechnique"
		updated, err := f.service.UpdateProfile(ctx, "u1", ProfileUpdate{School: &school}, nil)
		require.NoError(t, err)
		assert.Equal(t, "polytechnique", updated.School)
		assert.Equal(t, "gh", updated.Github)
	})

	t.Run("new resume replaces the old one", func(t *testing.T) {
		f := newAttendeeFixture()

		created, err := f.service.Create(ctx, entity.Attendee{UserID: "u1"}, &Upload{Filename: "old.pdf", Content: strings.NewReader("a")})
		require.NoError(t, err)

		updated, err := f.service.UpdateProfile(ctx, "u1", ProfileUpdate{}, &Upload{Filename: "new.pdf", Content: strings.NewReader("b")})
		require.NoError(t, err)
		assert.NotEqual(t, created.CV, updated.CV)
		assert.Contains(t, f.storage.deleted, created.CV)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newAttendeeFixture()

		_, err := f.service.UpdateProfile(ctx, "ghost", ProfileUpdate{}, nil)
		assert.ErrorIs(t, err, apperr.ErrAttendeeNotFound)
	})
}

func TestCVDownloadURL(t *testing.T) {
	ctx := context.Background()

	f := newAttendeeFixture()
	f.attendees.add(entity.Attendee{UserID: "u1", CV: "file-1"})
	f.attendees.add(entity.Attendee{UserID: "u2"})

	url, err := f.service.GetCVDownloadURL(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/file-1", url)

	_, err = f.service.GetCVDownloadURL(ctx, "u2")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidOperation, apperr.KindOf(err))

	_, err = f.service.GetCVDownloadURL(ctx, "ghost")
	assert.ErrorIs(t, err, apperr.ErrAttendeeNotFound)
}

func TestTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("add and remove", func(t *testing.T) {
		f := newAttendeeFixture()
		a := f.attendees.add(entity.Attendee{UserID: "u1"})

		require.NoError(t, f.service.AddToken(ctx, "u1", "tok"))
		stored, err := f.attendees.FindOneByID(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, stored.HasToken("tok"))

		require.NoError(t, f.service.RemoveToken(ctx, "u1", "tok"))
		stored, err = f.attendees.FindOneByID(ctx, a.ID)
		require.NoError(t, err)
		assert.False(t, stored.HasToken("tok"))
	})

	t.Run("duplicate token", func(t *testing.T) {
		f := newAttendeeFixture()
		f.attendees.add(entity.Attendee{UserID: "u1"})

		require.NoError(t, f.service.AddToken(ctx, "u1", "tok"))
		err := f.service.AddToken(ctx, "u1", "tok")
		assert.ErrorIs(t, err, apperr.ErrTokenExists)
	})

	t.Run("removing an absent token", func(t *testing.T) {
		f := newAttendeeFixture()
		f.attendees.add(entity.Attendee{UserID: "u1"})

		err := f.service.RemoveToken(ctx, "u1", "tok")
		assert.ErrorIs(t, err, apperr.ErrTokenNotFound)
	})
}

func TestSearchEnrichment(t *testing.T) {
	ctx := context.Background()

	f := newAttendeeFixture()
	known := f.attendees.add(entity.Attendee{UserID: "u1", School: "poly"})
	unknown := f.attendees.add(entity.Attendee{UserID: "u2", School: "poly"})
	f.resolver.users["u1"] = &identity.User{ID: "u1", FirstName: "Ada", LastName: "Lovelace", Username: "ada@example.com"}

	result, err := f.service.Search(ctx, []primitive.ObjectID{known.ID, unknown.ID}, SearchQuery{})
	require.NoError(t, err)
	require.Len(t, result.Attendees, 2)
	assert.EqualValues(t, 2, result.Total)

	byUser := make(map[string]*entity.Attendee)
	for _, a := range result.Attendees {
		byUser[a.UserID] = a
	}
	assert.Equal(t, "Ada", byUser["u1"].FirstName)
	assert.Empty(t, byUser["u2"].FirstName, "unknown directory users stay blank")
}

func TestFuzzySearchRanking(t *testing.T) {
	ctx := context.Background()

	attendees := newMemAttendeeRepository()
	best := attendees.add(entity.Attendee{UserID: "u1", Email: "ada@example.com"})
	far := attendees.add(entity.Attendee{UserID: "u2", Email: "zzzzzz@other.org"})

	search := NewFuzzySearch(attendees)
	result, err := search.Search(ctx, []primitive.ObjectID{far.ID, best.ID}, SearchQuery{Term: "ada@example.com"})
	require.NoError(t, err)
	require.Len(t, result.Attendees, 2)
	assert.Equal(t, best.ID, result.Attendees[0].ID, "best match first")
}

func TestFuzzySearchSchoolFilterAndPaging(t *testing.T) {
	ctx := context.Background()

	attendees := newMemAttendeeRepository()
	var ids []primitive.ObjectID
	for i := 0; i < 5; i++ {
		school := "poly"
		if i%2 == 1 {
			school = "mcgill"
		}
		a := attendees.add(entity.Attendee{UserID: fmt.Sprintf("u%d", i), School: school})
		ids = append(ids, a.ID)
	}

	search := NewFuzzySearch(attendees)
	result, err := search.Search(ctx, ids, SearchQuery{Schools: []string{"poly"}, Start: 1, Length: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.Total)
	assert.Len(t, result.Attendees, 1)
}
