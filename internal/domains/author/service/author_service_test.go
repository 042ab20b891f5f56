package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookshelf-api/internal/domains/author/model"
	"bookshelf-api/internal/shared/violation"
	"bookshelf-api/pkg/database"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) FindAll(ctx context.Context) ([]model.Author, error) {
	args := m.Called(ctx)
	authors, _ := args.Get(0).([]model.Author)
	return authors, args.Error(1)
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (*model.Author, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*model.Author)
	return a, args.Error(1)
}

func (m *mockRepo) FindByIDWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Author, error) {
	args := m.Called(ctx, tx, id)
	a, _ := args.Get(0).(*model.Author)
	return a, args.Error(1)
}

func (m *mockRepo) CreateWithTx(ctx context.Context, tx pgx.Tx, a *model.Author) error {
	return m.Called(ctx, tx, a).Error(0)
}

func (m *mockRepo) UpdateWithTx(ctx context.Context, tx pgx.Tx, a *model.Author) error {
	return m.Called(ctx, tx, a).Error(0)
}

func (m *mockRepo) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *mockRepo) InvalidateCache(ctx context.Context, ids ...int64) {
	m.Called(ctx, ids)
}

type mockDetacher struct {
	mock.Mock
}

func (m *mockDetacher) DetachAuthorWithTx(ctx context.Context, tx pgx.Tx, authorID int64) ([]int64, error) {
	args := m.Called(ctx, tx, authorID)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

func (m *mockDetacher) InvalidateCache(ctx context.Context, ids ...int64) {
	m.Called(ctx, ids)
}

// fakeTx runs fn without a real transaction and remembers the outcome.
type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) WithinTransaction(_ context.Context, fn database.TxFunc) error {
	f.calls++
	f.err = fn(nil)
	return f.err
}

func setup() (*mockRepo, *mockDetacher, *fakeTx, ServiceInterface) {
	repo := &mockRepo{}
	books := &mockDetacher{}
	tx := &fakeTx{}
	return repo, books, tx, NewAuthorService(repo, books, tx)
}

func strPtr(s string) *string { return &s }

func TestList(t *testing.T) {
	repo, _, _, svc := setup()
	ctx := context.Background()
	repo.On("FindAll", ctx).Return([]model.Author{
		{ID: 1, FirstName: "Victor", LastName: "Hugo"},
		{ID: 2, FirstName: "Émile", LastName: "Zola"},
	}, nil)

	got, err := svc.List(ctx)

	require.NoError(t, err)
	assert.Equal(t, []model.AuthorSummary{
		{ID: 1, FirstName: "Victor", LastName: "Hugo"},
		{ID: 2, FirstName: "Émile", LastName: "Zola"},
	}, got)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, _, _, svc := setup()
	ctx := context.Background()
	repo.On("FindAll", ctx).Return([]model.Author{}, nil)

	got, err := svc.List(ctx)

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetByID(t *testing.T) {
	repo, _, _, svc := setup()
	ctx := context.Background()
	repo.On("FindByID", ctx, int64(3)).Return(&model.Author{ID: 3, FirstName: "Albert", LastName: "Camus"}, nil)
	repo.On("FindByID", ctx, int64(4)).Return(nil, model.ErrAuthorNotFound)

	got, err := svc.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, &model.AuthorSummary{ID: 3, FirstName: "Albert", LastName: "Camus"}, got)

	_, err = svc.GetByID(ctx, 4)
	assert.ErrorIs(t, err, model.ErrAuthorNotFound)

	_, err = svc.GetByID(ctx, 0)
	assert.ErrorIs(t, err, model.ErrAuthorNotFound)
	repo.AssertNumberOfCalls(t, "FindByID", 2)
}

func TestCreate(t *testing.T) {
	repo, _, tx, svc := setup()
	ctx := context.Background()
	repo.On("CreateWithTx", ctx, mock.Anything, mock.AnythingOfType("*model.Author")).
		Run(func(args mock.Arguments) { args.Get(2).(*model.Author).ID = 11 }).
		Return(nil)

	got, err := svc.Create(ctx, model.AuthorPayload{FirstName: strPtr("Marcel"), LastName: strPtr("Proust")})

	require.NoError(t, err)
	assert.Equal(t, &model.AuthorSummary{ID: 11, FirstName: "Marcel", LastName: "Proust"}, got)
	assert.Equal(t, 1, tx.calls)
}

func TestCreate_InvalidNeverOpensTransaction(t *testing.T) {
	repo, _, tx, svc := setup()

	_, err := svc.Create(context.Background(), model.AuthorPayload{FirstName: strPtr("Marcel")})

	var verr *violation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []violation.Violation{{Field: "lastName", Message: "must not be blank"}}, verr.Violations)
	assert.Zero(t, tx.calls)
	repo.AssertNotCalled(t, "CreateWithTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_AppliesPresentFields(t *testing.T) {
	repo, _, _, svc := setup()
	ctx := context.Background()
	repo.On("FindByIDWithTx", ctx, mock.Anything, int64(5)).
		Return(&model.Author{ID: 5, FirstName: "Jules", LastName: "Vern"}, nil)
	repo.On("UpdateWithTx", ctx, mock.Anything, &model.Author{ID: 5, FirstName: "Jules", LastName: "Verne"}).Return(nil)
	repo.On("InvalidateCache", ctx, []int64{5}).Return()

	err := svc.Update(ctx, 5, model.AuthorPayload{LastName: strPtr("Verne")})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdate_InvalidRollsBack(t *testing.T) {
	repo, _, tx, svc := setup()
	ctx := context.Background()
	repo.On("FindByIDWithTx", ctx, mock.Anything, int64(5)).
		Return(&model.Author{ID: 5, FirstName: "Jules", LastName: "Verne"}, nil)

	err := svc.Update(ctx, 5, model.AuthorPayload{FirstName: strPtr("")})

	var verr *violation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "firstName", verr.Violations[0].Field)
	assert.Error(t, tx.err)
	repo.AssertNotCalled(t, "UpdateWithTx", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "InvalidateCache", mock.Anything, mock.Anything)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, _, _, svc := setup()
	ctx := context.Background()
	repo.On("FindByIDWithTx", ctx, mock.Anything, int64(99)).Return(nil, model.ErrAuthorNotFound)

	err := svc.Update(ctx, 99, model.AuthorPayload{FirstName: strPtr("X"), LastName: strPtr("Y")})

	assert.ErrorIs(t, err, model.ErrAuthorNotFound)
}

func TestDelete_DetachesBooks(t *testing.T) {
	repo, books, _, svc := setup()
	ctx := context.Background()
	repo.On("FindByIDWithTx", ctx, mock.Anything, int64(2)).Return(&model.Author{ID: 2}, nil)
	books.On("DetachAuthorWithTx", ctx, mock.Anything, int64(2)).Return([]int64{7, 8}, nil)
	repo.On("DeleteWithTx", ctx, mock.Anything, int64(2)).Return(nil)
	repo.On("InvalidateCache", ctx, []int64{2}).Return()
	books.On("InvalidateCache", ctx, []int64{7, 8}).Return()

	require.NoError(t, svc.Delete(ctx, 2))

	repo.AssertExpectations(t)
	books.AssertExpectations(t)
}

func TestDelete_RetriesAfterDeadlock(t *testing.T) {
	repo, books, tx, svc := setup()
	ctx := context.Background()
	repo.On("FindByIDWithTx", ctx, mock.Anything, int64(2)).Return(&model.Author{ID: 2}, nil)
	books.On("DetachAuthorWithTx", ctx, mock.Anything, int64(2)).
		Return(nil, &pgconn.PgError{Code: "40P01"}).Once()
	books.On("DetachAuthorWithTx", ctx, mock.Anything, int64(2)).Return([]int64{7}, nil).Once()
	repo.On("DeleteWithTx", ctx, mock.Anything, int64(2)).Return(nil).Once()
	repo.On("InvalidateCache", ctx, []int64{2}).Return()
	books.On("InvalidateCache", ctx, []int64{7}).Return()

	require.NoError(t, svc.Delete(ctx, 2))

	assert.Equal(t, 2, tx.calls)
	repo.AssertExpectations(t)
	books.AssertExpectations(t)
}

func TestDelete_NotFound(t *testing.T) {
	repo, books, _, svc := setup()
	ctx := context.Background()
	repo.On("FindByIDWithTx", ctx, mock.Anything, int64(2)).Return(nil, model.ErrAuthorNotFound)

	err := svc.Delete(ctx, 2)

	assert.ErrorIs(t, err, model.ErrAuthorNotFound)
	books.AssertNotCalled(t, "DetachAuthorWithTx", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "DeleteWithTx", mock.Anything, mock.Anything, mock.Anything)
}
