package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cityhall/employee-registry/internal/database"
	"github.com/cityhall/employee-registry/internal/metrics"
	"github.com/cityhall/employee-registry/internal/session"
	"github.com/cityhall/employee-registry/internal/wizard"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)

func setupRegistrationTest(t *testing.T) (*RegistrationService, sqlmock.Sqlmock, *session.MemoryStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	postgresDB := &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}
	store := session.NewMemoryStore(time.Hour)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	service := NewRegistrationService(
		store,
		database.NewReferenceRepository(postgresDB),
		database.NewEmployeeRepository(postgresDB),
		metrics.New(prometheus.NewRegistry()),
		logger,
		RegistrationConfig{PhotoSize: 16, PhotoMaxBytes: 1 << 20},
	)
	service.now = func() time.Time { return fixedNow }

	return service, mock, store
}

// expectReferences registers the three lookup queries; they run concurrently
func expectReferences(mock sqlmock.Sqlmock) {
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT (.+) FROM job_roles`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("r-1", "Professor").
			AddRow("r-2", "Enfermeiro"))
	mock.ExpectQuery(`SELECT (.+) FROM departments`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow("d-1", "Educação"))
	mock.ExpectQuery(`SELECT (.+) FROM political_sponsors`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "type"}).
			AddRow("s-1", "Prefeito Municipal", "prefeito"))
}

func val(s string) *string { return &s }

func startSession(t *testing.T, service *RegistrationService, mock sqlmock.Sqlmock) string {
	t.Helper()
	expectReferences(mock)

	res, err := service.Start(context.Background())
	require.NoError(t, err)
	return res.SessionID
}

// fillToLastStep completes every step and leaves the wizard on step 3
func fillToLastStep(t *testing.T, service *RegistrationService, id string) {
	t.Helper()
	ctx := context.Background()

	_, err := service.SetFields(ctx, id, map[wizard.Field]*string{
		wizard.FieldFullName:   val("Ana Paula Souza"),
		wizard.FieldNationalID: val("123.456.789-00"),
		wizard.FieldBirthDate:  val("1990-01-01"),
	})
	require.NoError(t, err)
	res, err := service.Next(ctx, id)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	_, err = service.SetFields(ctx, id, map[wizard.Field]*string{
		wizard.FieldContractType: val("efetivo"),
		wizard.FieldRoleID:       val("r-1"),
		wizard.FieldDepartmentID: val("d-1"),
		wizard.FieldSalary:       val("R$ 3.500,00"),
	})
	require.NoError(t, err)
	res, err = service.Next(ctx, id)
	require.NoError(t, err)
	require.True(t, res.Accepted)

	_, err = service.SetFields(ctx, id, map[wizard.Field]*string{
		wizard.FieldSponsorID: val("s-1"),
	})
	require.NoError(t, err)
}

func expectInsert(mock sqlmock.Sqlmock) *sqlmock.ExpectedQuery {
	return mock.ExpectQuery(`INSERT INTO employees`).
		WithArgs(
			"Ana Paula Souza", "123.456.789-00", "1990-01-01",
			nil, nil, nil, nil, nil, nil, nil, nil,
			"efetivo", "Professor", "d-1", nil, nil,
			3500.0, "2026-03-09", "s-1", nil, nil, "ativo",
		)
}

func TestRegistrationService_Start(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		service, mock, store := setupRegistrationTest(t)
		expectReferences(mock)

		res, err := service.Start(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, res.SessionID)
		assert.Equal(t, wizard.StepPersonal, res.View.Step)
		assert.Empty(t, res.Notifications)
		assert.Equal(t, 1.0, testutil.ToFloat64(service.metrics.SessionsStarted))

		sess, err := store.Get(context.Background(), res.SessionID)
		require.NoError(t, err)
		assert.Len(t, sess.References.Roles, 2)
		assert.Equal(t, "Prefeito Municipal", sess.References.Sponsors[0].Name)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		service, mock, store := setupRegistrationTest(t)
		mock.MatchExpectationsInOrder(false)
		mock.ExpectQuery(`SELECT (.+) FROM job_roles`).
			WillReturnError(fmt.Errorf("connection refused"))
		mock.ExpectQuery(`SELECT (.+) FROM departments`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
		mock.ExpectQuery(`SELECT (.+) FROM political_sponsors`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

		res, err := service.Start(context.Background())
		assert.Error(t, err)
		assert.Nil(t, res)
		assert.Contains(t, err.Error(), "failed to load lookup lists")
		assert.Equal(t, 0, store.Len())
	})
}

func TestRegistrationService_UnknownSession(t *testing.T) {
	service, _, _ := setupRegistrationTest(t)

	_, err := service.View(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	_, err = service.Next(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	err = service.Abandon(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRegistrationService_SetFields(t *testing.T) {
	service, mock, _ := setupRegistrationTest(t)
	id := startSession(t, service, mock)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		res, err := service.SetFields(ctx, id, map[wizard.Field]*string{
			wizard.FieldFullName: val("Ana"),
			wizard.FieldEmail:    val("ana@prefeitura.gov.br"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Ana", res.View.Draft.FullName)
		assert.Equal(t, "ana@prefeitura.gov.br", res.View.Draft.Email)
	})

	t.Run("Clear", func(t *testing.T) {
		res, err := service.SetFields(ctx, id, map[wizard.Field]*string{wizard.FieldEmail: nil})
		require.NoError(t, err)
		assert.Empty(t, res.View.Draft.Email)
		assert.Equal(t, "Ana", res.View.Draft.FullName)
	})

	t.Run("Unknown Field", func(t *testing.T) {
		res, err := service.SetFields(ctx, id, map[wizard.Field]*string{
			wizard.FieldFullName: val("Outro Nome"),
			"matricula":          val("123"),
		})
		assert.ErrorIs(t, err, wizard.ErrUnknownField)
		assert.Nil(t, res)

		view, err := service.View(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Ana", view.View.Draft.FullName)
	})

	t.Run("Photo Is Normalised", func(t *testing.T) {
		payload := photoPayload(t)
		fields := map[wizard.Field]*string{wizard.FieldPhoto: &payload}

		res, err := service.SetFields(ctx, id, fields)
		require.NoError(t, err)
		require.NotNil(t, res.View.Draft.Photo)
		assert.Contains(t, *res.View.Draft.Photo, "data:image/jpeg;base64,")
		assert.Equal(t, photoPayload(t), *fields[wizard.FieldPhoto])
	})

	t.Run("Invalid Photo", func(t *testing.T) {
		res, err := service.SetFields(ctx, id, map[wizard.Field]*string{
			wizard.FieldFullName: val("Outro Nome"),
			wizard.FieldPhoto:    val("not a photo"),
		})
		assert.ErrorIs(t, err, ErrInvalidPhoto)
		assert.Nil(t, res)

		view, err := service.View(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Ana", view.View.Draft.FullName)
		assert.Contains(t, *view.View.Draft.Photo, "data:image/jpeg;base64,")
	})

	t.Run("Clear Photo", func(t *testing.T) {
		res, err := service.SetFields(ctx, id, map[wizard.Field]*string{wizard.FieldPhoto: nil})
		require.NoError(t, err)
		assert.Nil(t, res.View.Draft.Photo)
	})
}

func TestRegistrationService_Navigation(t *testing.T) {
	service, mock, _ := setupRegistrationTest(t)
	id := startSession(t, service, mock)
	ctx := context.Background()

	t.Run("Blocked Next", func(t *testing.T) {
		res, err := service.Next(ctx, id)
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.Equal(t, wizard.StepPersonal, res.View.Step)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, wizard.KindWarning, res.Notifications[0].Kind)
		assert.Equal(t, 1.0, testutil.ToFloat64(service.metrics.BlockedAdvances.WithLabelValues("1")))
	})

	t.Run("Next And Back", func(t *testing.T) {
		_, err := service.SetFields(ctx, id, map[wizard.Field]*string{
			wizard.FieldFullName:   val("Ana Paula Souza"),
			wizard.FieldNationalID: val("123.456.789-00"),
			wizard.FieldBirthDate:  val("1990-01-01"),
		})
		require.NoError(t, err)

		res, err := service.Next(ctx, id)
		require.NoError(t, err)
		assert.True(t, res.Accepted)
		assert.Equal(t, wizard.StepEmployment, res.View.Step)
		assert.Empty(t, res.Notifications)
		assert.Len(t, res.View.Options[wizard.FieldRoleID], 2)

		res, err = service.Back(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, wizard.StepPersonal, res.View.Step)
		assert.Equal(t, "Ana Paula Souza", res.View.Draft.FullName)
	})
}

func photoPayload(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 24, 24))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestRegistrationService_Capture(t *testing.T) {
	service, mock, _ := setupRegistrationTest(t)
	id := startSession(t, service, mock)
	ctx := context.Background()

	res, err := service.OpenCamera(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.View.CameraActive)

	t.Run("Invalid Payload", func(t *testing.T) {
		res, err := service.Capture(ctx, id, "data:image/png;base64,bm90IGFuIGltYWdl")
		require.NoError(t, err)
		assert.False(t, res.Accepted)
		assert.True(t, res.View.CameraActive)
		assert.Nil(t, res.View.Draft.Photo)
		assert.Empty(t, res.Notifications)
	})

	t.Run("Success", func(t *testing.T) {
		res, err := service.Capture(ctx, id, photoPayload(t))
		require.NoError(t, err)
		assert.True(t, res.Accepted)
		assert.False(t, res.View.CameraActive)
		require.NotNil(t, res.View.Draft.Photo)
		assert.Contains(t, *res.View.Draft.Photo, "data:image/jpeg;base64,")
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, wizard.KindSuccess, res.Notifications[0].Kind)
	})

	t.Run("Camera Closed", func(t *testing.T) {
		res, err := service.Capture(ctx, id, photoPayload(t))
		require.NoError(t, err)
		assert.False(t, res.Accepted)
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(service.metrics.PhotoCaptures.WithLabelValues("captured")))
	assert.Equal(t, 2.0, testutil.ToFloat64(service.metrics.PhotoCaptures.WithLabelValues("ignored")))
}

func TestRegistrationService_Submit(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		service, mock, _ := setupRegistrationTest(t)
		id := startSession(t, service, mock)
		fillToLastStep(t, service, id)

		mock.MatchExpectationsInOrder(true)
		expectInsert(mock).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("e-1", fixedNow))

		res, err := service.Submit(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, res.Employee)
		assert.Equal(t, "e-1", res.Employee.ID)
		assert.Equal(t, "Professor", res.Employee.JobRole)
		assert.Equal(t, wizard.StepPersonal, res.View.Step)
		assert.Empty(t, res.View.Draft.FullName)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, wizard.KindSuccess, res.Notifications[0].Kind)
		assert.Equal(t, 1.0, testutil.ToFloat64(service.metrics.Submissions.WithLabelValues(metrics.OutcomeCreated)))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Incomplete", func(t *testing.T) {
		service, mock, _ := setupRegistrationTest(t)
		id := startSession(t, service, mock)
		fillToLastStep(t, service, id)

		_, err := service.SetFields(context.Background(), id, map[wizard.Field]*string{wizard.FieldSponsorID: nil})
		require.NoError(t, err)

		res, err := service.Submit(context.Background(), id)
		assert.ErrorIs(t, err, wizard.ErrStepIncomplete)
		require.NotNil(t, res)
		assert.Equal(t, wizard.StepSponsorship, res.View.Step)
		assert.Equal(t, "Ana Paula Souza", res.View.Draft.FullName)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, wizard.KindWarning, res.Notifications[0].Kind)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not On Last Step", func(t *testing.T) {
		service, mock, _ := setupRegistrationTest(t)
		id := startSession(t, service, mock)

		res, err := service.Submit(context.Background(), id)
		assert.ErrorIs(t, err, wizard.ErrNotOnFinalStep)
		require.NotNil(t, res)
		assert.Empty(t, res.Notifications)
	})

	t.Run("Database Error Then Retry", func(t *testing.T) {
		service, mock, _ := setupRegistrationTest(t)
		id := startSession(t, service, mock)
		fillToLastStep(t, service, id)

		mock.MatchExpectationsInOrder(true)
		expectInsert(mock).WillReturnError(fmt.Errorf("violates foreign key constraint"))

		res, err := service.Submit(context.Background(), id)
		assert.ErrorIs(t, err, wizard.ErrSubmissionFailed)
		require.NotNil(t, res)
		assert.Equal(t, wizard.StepSponsorship, res.View.Step)
		assert.False(t, res.View.Submitting)
		assert.Equal(t, "Ana Paula Souza", res.View.Draft.FullName)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, wizard.KindError, res.Notifications[0].Kind)

		expectInsert(mock).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("e-2", fixedNow))

		res, err = service.Submit(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "e-2", res.Employee.ID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Concurrent Submits Create Once", func(t *testing.T) {
		service, mock, _ := setupRegistrationTest(t)
		id := startSession(t, service, mock)
		fillToLastStep(t, service, id)

		mock.MatchExpectationsInOrder(true)
		expectInsert(mock).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("e-1", fixedNow))

		const callers = 5
		errs := make([]error, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = service.Submit(context.Background(), id)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, wizard.ErrNotOnFinalStep)
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 0, service.locks.size())

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// failingSaveStore rejects saves while failSaves is set
type failingSaveStore struct {
	*session.MemoryStore
	failSaves bool
}

func (s *failingSaveStore) Save(ctx context.Context, sess *session.Session) error {
	if s.failSaves {
		return errors.New("redis down")
	}
	return s.MemoryStore.Save(ctx, sess)
}

func TestRegistrationService_SaveFailure(t *testing.T) {
	t.Run("Before Submit", func(t *testing.T) {
		service, mock, store := setupRegistrationTest(t)
		sessions := &failingSaveStore{MemoryStore: store}
		service.sessions = sessions
		id := startSession(t, service, mock)

		sessions.failSaves = true
		res, err := service.SetFields(context.Background(), id, map[wizard.Field]*string{
			wizard.FieldFullName: val("Ana"),
		})
		assert.EqualError(t, err, "redis down")
		assert.Nil(t, res)
	})

	t.Run("After Employee Created", func(t *testing.T) {
		service, mock, store := setupRegistrationTest(t)
		sessions := &failingSaveStore{MemoryStore: store}
		service.sessions = sessions
		id := startSession(t, service, mock)
		fillToLastStep(t, service, id)

		mock.MatchExpectationsInOrder(true)
		expectInsert(mock).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("e-1", fixedNow))

		sessions.failSaves = true
		res, err := service.Submit(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, res)
		require.NotNil(t, res.Employee)
		assert.Equal(t, "e-1", res.Employee.ID)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, wizard.KindSuccess, res.Notifications[0].Kind)

		_, err = store.Get(context.Background(), id)
		assert.ErrorIs(t, err, session.ErrNotFound)

		res, err = service.Submit(context.Background(), id)
		assert.ErrorIs(t, err, session.ErrNotFound)
		assert.Nil(t, res)

		assert.Equal(t, 1.0, testutil.ToFloat64(service.metrics.Submissions.WithLabelValues(metrics.OutcomeCreated)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRegistrationService_Abandon(t *testing.T) {
	service, mock, store := setupRegistrationTest(t)
	id := startSession(t, service, mock)

	require.NoError(t, service.Abandon(context.Background(), id))
	assert.Equal(t, 0, store.Len())

	_, err := service.View(context.Background(), id)
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(service.metrics.SessionsAbandoned))
}
