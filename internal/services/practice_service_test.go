package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/practice"
	"github.com/vytor/wordflash/internal/services"
	"github.com/vytor/wordflash/internal/testutil/mocks"
)

type PracticeServiceSuite struct {
	suite.Suite
	cards    *mocks.MockCardRepository
	sessions *mocks.MockSessionRepository
	svc      services.PracticeService
	now      time.Time
	ctx      context.Context
}

func (s *PracticeServiceSuite) SetupTest() {
	s.cards = new(mocks.MockCardRepository)
	s.sessions = new(mocks.MockSessionRepository)
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = context.Background()
	s.svc = services.NewPracticeService(s.cards, s.sessions, services.PracticeOptions{
		OptionCount: 4,
		Now:         func() time.Time { return s.now },
	})
}

func readingOnlyRequest() services.StartSessionRequest {
	return services.StartSessionRequest{
		Preferences: practice.Preferences{
			Enabled:  []models.ExerciseType{models.ExerciseReadingRecognition},
			Language: "de",
		},
	}
}

func (s *PracticeServiceSuite) dueCards() []models.Card {
	return []models.Card{
		{ID: "c1", FrontText: "Haus", BackText: "house", Language: "de"},
		{ID: "c2", FrontText: "Hund", BackText: "dog", Language: "de"},
	}
}

func (s *PracticeServiceSuite) TestFullSessionIsRecorded() {
	s.cards.On("ReviewCards", mock.Anything, s.now, "de").Return(s.dueCards(), nil)
	s.cards.On("Update", mock.Anything, mock.MatchedBy(func(c models.Card) bool {
		_, scored := c.Score(models.ExerciseReadingRecognition)
		return scored && c.ReviewCount == 1
	})).Return(nil).Twice()
	s.sessions.On("Insert", mock.Anything, mock.MatchedBy(func(r models.SessionRecord) bool {
		return r.CardsReviewed == 2 && r.CorrectCount == 1 && r.IncorrectCount == 1 && r.StartedAt.Equal(s.now)
	})).Return(int64(1), nil).Once()

	view, err := s.svc.Start(s.ctx, readingOnlyRequest())
	s.Require().NoError(err)
	s.Require().True(view.State.Active)
	s.Assert().Equal(2, view.State.TotalCount())
	id := view.ID

	view, err = s.svc.CheckAnswer(s.ctx, id, true)
	s.Require().NoError(err)
	s.Assert().Equal(practice.AnswerAnswered, view.State.AnswerState)

	view, err = s.svc.Confirm(s.ctx, id, true)
	s.Require().NoError(err)
	s.Assert().Equal(1, view.State.CurrentIndex)

	view, err = s.svc.Skip(s.ctx, id)
	s.Require().NoError(err)
	s.Assert().False(view.State.Active)
	s.Require().NotNil(view.Report)
	s.Assert().Equal(2, view.Report.CardsReviewed)

	view, err = s.svc.End(s.ctx, id)
	s.Require().NoError(err)
	s.Assert().False(view.State.Active)

	_, err = s.svc.Get(s.ctx, id)
	s.Assert().True(errors.HasCode(err, errors.ErrCodeNotFound))

	s.cards.AssertExpectations(s.T())
	s.sessions.AssertExpectations(s.T())
}

func (s *PracticeServiceSuite) TestNoDueItems() {
	s.cards.On("ReviewCards", mock.Anything, s.now, "de").Return([]models.Card{}, nil)

	view, err := s.svc.Start(s.ctx, readingOnlyRequest())

	s.Require().NoError(err)
	s.Assert().False(view.State.Active)
	s.Assert().True(view.State.NoDueItems)
}

func (s *PracticeServiceSuite) TestStartWithExplicitCards() {
	cards := s.dueCards()
	s.cards.On("Get", mock.Anything, "c2").Return(&cards[1], nil)

	req := readingOnlyRequest()
	req.CardIDs = []string{"c2"}
	view, err := s.svc.Start(s.ctx, req)

	s.Require().NoError(err)
	s.Require().Equal(1, view.State.TotalCount())
	s.Assert().Equal("c2", view.State.Queue[0].Card.ID)
	s.cards.AssertNotCalled(s.T(), "ReviewCards", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PracticeServiceSuite) TestStartRejectsUnknownExerciseType() {
	req := readingOnlyRequest()
	req.Preferences.Enabled = []models.ExerciseType{"spelling"}

	_, err := s.svc.Start(s.ctx, req)

	s.Assert().True(errors.HasCode(err, errors.ErrCodeValidation))
}

func (s *PracticeServiceSuite) TestPersistenceFailureStillAdvances() {
	s.cards.On("ReviewCards", mock.Anything, s.now, "de").Return(s.dueCards(), nil)
	s.cards.On("Update", mock.Anything, mock.Anything).Return(stderrors.New("database is locked")).Once()

	view, err := s.svc.Start(s.ctx, readingOnlyRequest())
	s.Require().NoError(err)

	view, err = s.svc.Skip(s.ctx, view.ID)

	s.Require().Error(err)
	s.Assert().True(errors.HasCode(err, errors.ErrCodeInternal))
	s.Assert().True(view.State.Active)
	s.Assert().Equal(1, view.State.CurrentIndex)
	s.Assert().Equal(1, view.State.IncorrectCount)
}

func (s *PracticeServiceSuite) TestEndEarlyRecordsPartialSession() {
	s.cards.On("ReviewCards", mock.Anything, s.now, "de").Return(s.dueCards(), nil)
	s.cards.On("Update", mock.Anything, mock.Anything).Return(nil).Once()
	s.sessions.On("Insert", mock.Anything, mock.MatchedBy(func(r models.SessionRecord) bool {
		return r.CardsReviewed == 1
	})).Return(int64(7), nil).Once()

	view, err := s.svc.Start(s.ctx, readingOnlyRequest())
	s.Require().NoError(err)
	_, err = s.svc.RemoveCard(s.ctx, view.ID, "c1")
	s.Require().NoError(err)

	view, err = s.svc.End(s.ctx, view.ID)
	s.Require().NoError(err)
	s.Require().NotNil(view.Report)
	s.Assert().Equal(1, view.Report.IncorrectCount)
	s.sessions.AssertExpectations(s.T())
}

func (s *PracticeServiceSuite) TestEndWithoutReviewsSkipsHistory() {
	s.cards.On("ReviewCards", mock.Anything, s.now, "de").Return(s.dueCards(), nil)

	view, err := s.svc.Start(s.ctx, readingOnlyRequest())
	s.Require().NoError(err)
	_, err = s.svc.End(s.ctx, view.ID)
	s.Require().NoError(err)

	s.sessions.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

func (s *PracticeServiceSuite) TestUnknownSession() {
	_, err := s.svc.CheckAnswer(s.ctx, "nope", true)
	s.Assert().True(errors.HasCode(err, errors.ErrCodeNotFound))
}

func (s *PracticeServiceSuite) TestHistory() {
	records := []models.SessionRecord{{ID: 1, CardsReviewed: 3}}
	s.sessions.On("List", mock.Anything, models.SessionFilter{Limit: 5}).Return(records, nil)

	got, err := s.svc.History(s.ctx, models.SessionFilter{Limit: 5})

	s.Require().NoError(err)
	s.Assert().Equal(records, got)
}

func TestPracticeServiceSuite(t *testing.T) {
	suite.Run(t, new(PracticeServiceSuite))
}

func TestPracticeService_MaxItemsDefault(t *testing.T) {
	cards := new(mocks.MockCardRepository)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	cards.On("ReviewCards", mock.Anything, now, "").Return([]models.Card{
		{ID: "a", FrontText: "a", BackText: "1", Language: "de"},
		{ID: "b", FrontText: "b", BackText: "2", Language: "de"},
		{ID: "c", FrontText: "c", BackText: "3", Language: "de"},
	}, nil)
	svc := services.NewPracticeService(cards, new(mocks.MockSessionRepository), services.PracticeOptions{
		MaxItems: 2,
		Now:      func() time.Time { return now },
	})

	view, err := svc.Start(context.Background(), services.StartSessionRequest{
		Preferences: practice.Preferences{Enabled: []models.ExerciseType{models.ExerciseReadingRecognition}},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, view.State.TotalCount())
}

func TestPracticeService_EvictsIdleSessions(t *testing.T) {
	cards := new(mocks.MockCardRepository)
	sessions := new(mocks.MockSessionRepository)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := start
	cards.On("ReviewCards", mock.Anything, mock.Anything, "").Return([]models.Card{
		{ID: "a", FrontText: "a", BackText: "1", Language: "de"},
		{ID: "b", FrontText: "b", BackText: "2", Language: "de"},
	}, nil)
	cards.On("Update", mock.Anything, mock.Anything).Return(nil)
	sessions.On("Insert", mock.Anything, mock.MatchedBy(func(r models.SessionRecord) bool {
		return r.CardsReviewed == 1 && r.CorrectCount == 1
	})).Return(int64(1), nil).Once()

	svc := services.NewPracticeService(cards, sessions, services.PracticeOptions{
		SessionTTL: time.Hour,
		Now:        func() time.Time { return now },
	})
	ctx := context.Background()
	req := services.StartSessionRequest{
		Preferences: practice.Preferences{Enabled: []models.ExerciseType{models.ExerciseReadingRecognition}},
	}

	idle, err := svc.Start(ctx, req)
	require.NoError(t, err)
	_, err = svc.CheckAnswer(ctx, idle.ID, true)
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, idle.ID, true)
	require.NoError(t, err)

	now = start.Add(30 * time.Minute)
	recent, err := svc.Start(ctx, req)
	require.NoError(t, err)

	now = start.Add(61 * time.Minute)
	_, err = svc.Start(ctx, req)
	require.NoError(t, err)

	_, err = svc.Get(ctx, idle.ID)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
	_, err = svc.Get(ctx, recent.ID)
	assert.NoError(t, err, "sessions within the TTL are kept")
	sessions.AssertExpectations(t)
}
