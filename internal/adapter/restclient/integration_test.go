package restclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"user-crud-console/internal/adapter/db/gormrepo"
	"user-crud-console/internal/adapter/gin/handler"
	"user-crud-console/internal/adapter/gin/router"
	"user-crud-console/internal/adapter/restclient"
	"user-crud-console/internal/usecase/screen"
	"user-crud-console/internal/usecase/user"
	"user-crud-console/internal/usecase/userstore"
	apperrors "user-crud-console/pkg/errors"
)

// notes collects store notifications.
type notes struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notes) Notify(_ userstore.Severity, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *notes) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.msgs) == 0 {
		return ""
	}
	return n.msgs[len(n.msgs)-1]
}

type userJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ReferenceAPISuite drives the console stack against the reference API server
// backed by in-memory sqlite.
type ReferenceAPISuite struct {
	suite.Suite
	server *httptest.Server
	repo   *gormrepo.UserRepo
	client *restclient.Client
	notes  *notes
	store  *userstore.Store
	ctrl   *screen.Controller
}

func (s *ReferenceAPISuite) SetupTest() {
	log := zaptest.NewLogger(s.T())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(gormrepo.AutoMigrate(db))

	s.repo = gormrepo.NewUserRepo(db, log)
	_, err = gormrepo.SeedDemoUsers(context.Background(), s.repo)
	s.Require().NoError(err)

	gin.SetMode(gin.TestMode)
	h := handler.NewUserHandler(user.New(s.repo, log), log)
	s.server = httptest.NewServer(router.SetupRouter(h, nil, "user-api-test", log))
	s.T().Cleanup(func() {
		s.server.Close()
		_ = sqlDB.Close()
	})

	s.client = restclient.New(s.server.URL, log)
	s.notes = &notes{}
	s.store = userstore.New(s.client, s.notes, log)
	s.ctrl = screen.New(s.store, nil, log)
}

func (s *ReferenceAPISuite) TestMountLoadsSeededUsers() {
	s.Require().NoError(s.ctrl.Mount(context.Background()))

	users := s.ctrl.View().VisibleUsers
	s.Len(users, len(gormrepo.DemoUsers))
	s.Equal("Leanne Graham", users[0].Name)
}

func (s *ReferenceAPISuite) TestCreateRoundTrip() {
	ctx := context.Background()
	s.Require().NoError(s.ctrl.Mount(ctx))

	s.ctrl.Add()
	for path, value := range map[string]string{
		"name":           "Bob Stone",
		"email":          "bob@example.com",
		"phone":          "(555) 123-4567",
		"address.street": "2 Elm St",
		"address.city":   "Shelbyville",
	} {
		s.Require().NoError(s.ctrl.SetField(path, value))
	}

	created, err := s.ctrl.Submit(ctx)
	s.Require().NoError(err)
	s.Equal(int64(len(gormrepo.DemoUsers)+1), created.ID)
	s.Equal("USER-Bob Stone", created.Username)
	s.Equal(userstore.MsgCreated, s.notes.last())

	stored, err := s.repo.GetByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("(555) 123-4567", stored.Phone)
	s.Equal("Shelbyville", stored.Address.City)

	s.ctrl.Search("bob")
	s.Len(s.ctrl.View().VisibleUsers, 1)
}

func (s *ReferenceAPISuite) TestUpdateAndDelete() {
	ctx := context.Background()
	s.Require().NoError(s.ctrl.Mount(ctx))

	s.Require().NoError(s.ctrl.Edit(3))
	s.Require().NoError(s.ctrl.SetField("name", "Clementine B."))
	s.Require().NoError(s.ctrl.SetField("phone", "463-123-4447"))
	updated, err := s.ctrl.Submit(ctx)
	s.Require().NoError(err)
	s.Equal(int64(3), updated.ID)
	s.Equal("Samantha", updated.Username, "username survives edits")

	got, ok := s.store.Get(3)
	s.Require().True(ok)
	s.Equal("Clementine B.", got.Name)

	s.Require().NoError(s.ctrl.Delete(ctx, 3))
	_, ok = s.store.Get(3)
	s.False(ok)
	_, err = s.repo.GetByID(ctx, 3)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ReferenceAPISuite) TestUpdateOfRemovedUserFails() {
	ctx := context.Background()
	s.Require().NoError(s.ctrl.Mount(ctx))
	s.Require().NoError(s.repo.Delete(ctx, 2))

	s.Require().NoError(s.ctrl.Edit(2))
	s.Require().NoError(s.ctrl.SetField("phone", "010-692-6593"))
	_, err := s.ctrl.Submit(ctx)

	s.ErrorIs(err, apperrors.ErrUpdateFailed)
	s.Equal(userstore.MsgUpdateFailed, s.notes.last())
	s.True(s.ctrl.View().Form.Open)
}

func (s *ReferenceAPISuite) TestDeleteOfRemovedUserStillRemovesLocally() {
	ctx := context.Background()
	s.Require().NoError(s.ctrl.Mount(ctx))
	s.Require().NoError(s.repo.Delete(ctx, 5))

	status, err := s.client.Delete(ctx, 5)
	s.Require().NoError(err)
	s.Equal(http.StatusNotFound, status)

	s.Require().NoError(s.ctrl.Delete(ctx, 5))
	_, ok := s.store.Get(5)
	s.False(ok)
}

func (s *ReferenceAPISuite) TestServerSideSearch() {
	users, err := s.client.List(context.Background())
	s.Require().NoError(err)
	s.Len(users, len(gormrepo.DemoUsers))

	resp, err := http.Get(s.server.URL + "/users?q=glenna")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var found []userJSON
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&found))
	s.Require().Len(found, 1)
	s.Equal("Glenna Reichert", found[0].Name)
}

func (s *ReferenceAPISuite) TestFetchFailureWhenServerIsDown() {
	s.server.Close()

	err := s.ctrl.Mount(context.Background())

	s.ErrorIs(err, apperrors.ErrFetchFailed)
	s.Equal(userstore.MsgFetchFailed, s.notes.last())
	s.Empty(s.ctrl.View().VisibleUsers)
}

func TestReferenceAPISuite(t *testing.T) {
	suite.Run(t, new(ReferenceAPISuite))
}

var _ userstore.Client = (*restclient.Client)(nil)
