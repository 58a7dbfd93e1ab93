package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"coffeetrucks/internal/cache"
	"coffeetrucks/internal/config"
	"coffeetrucks/internal/database"
	"coffeetrucks/internal/handlers"
	"coffeetrucks/internal/middleware"
	"coffeetrucks/internal/models"
	"coffeetrucks/internal/repositories"
	"coffeetrucks/internal/services"
	"coffeetrucks/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_session_secret"

type testEnv struct {
	app      *fiber.App
	views    *cache.MemoryViews
	verifier *session.Verifier
	users    repositories.UserRepository
	trucks   repositories.TruckRepository
	reviews  repositories.ReviewRepository
}

// envOptions lets a test slow down or fail storage seen by the services.
// Fixtures written through testEnv always use the plain repositories.
type envOptions struct {
	timeout      time.Duration
	wrapTrucks   func(repositories.TruckRepository) repositories.TruckRepository
	wrapListings func(repositories.ReviewRepository) repositories.ReviewRepository // reviews read by the truck views
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	return setupAppWith(t, envOptions{})
}

func setupAppWith(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	if opts.timeout == 0 {
		opts.timeout = 5 * time.Second
	}

	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	db, err := database.Open(config.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		views:    cache.NewMemoryViews(time.Minute),
		verifier: session.NewVerifier(testSecret),
		users:    repositories.NewGORMUserRepository(db),
		trucks:   repositories.NewGORMTruckRepository(db),
		reviews:  repositories.NewGORMReviewRepository(db),
	}

	trucks, listings := env.trucks, env.reviews
	if opts.wrapTrucks != nil {
		trucks = opts.wrapTrucks(trucks)
	}
	if opts.wrapListings != nil {
		listings = opts.wrapListings(listings)
	}

	truckService := services.NewTruckService(trucks, listings, env.users, env.views)
	reviewService := services.NewReviewService(env.reviews, trucks, env.views)

	env.app = fiber.New()
	apiV1 := env.app.Group("/api/v1", middleware.Session(env.verifier))
	handlers.NewTruckHandler(truckService, env.views, opts.timeout).RegisterRoutes(apiV1)
	handlers.NewReviewHandler(reviewService, opts.timeout).RegisterRoutes(apiV1)
	handlers.NewUserHandler(env.users, opts.timeout).RegisterRoutes(apiV1)
	return env
}

func (e *testEnv) user(t *testing.T, role models.Role) (*models.User, string) {
	t.Helper()
	u := &models.User{Name: string(role), Email: uuid.New().String() + "@example.com", Role: role}
	require.NoError(t, e.users.Create(context.Background(), u))
	token, err := e.verifier.Sign(u.ID, time.Hour)
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) truck(t *testing.T, ownerID string) *models.CoffeeTruck {
	t.Helper()
	tr := &models.CoffeeTruck{Name: "Brew Wagon", City: "Haifa", Address: "1 Port St", OwnerID: ownerID}
	require.NoError(t, e.trucks.Create(context.Background(), tr))
	return tr
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Review  *models.Review  `json:"review"`
	Truck   json.RawMessage `json:"truck"`
	Trucks  []struct {
		ID          string  `json:"id"`
		AvgRating   float64 `json:"avgRating"`
		ReviewCount int     `json:"reviewCount"`
	} `json:"trucks"`
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestCreateReview_Unauthenticated(t *testing.T) {
	env := setupApp(t)
	owner, _ := env.user(t, models.RoleTruckOwner)
	truck := env.truck(t, owner.ID)

	resp, out := env.do(t, http.MethodPost, "/api/v1/trucks/"+truck.ID+"/reviews", "",
		fiber.Map{"rating": 5, "content": "Great coffee!"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, out.Success)
	assert.Equal(t, "אינך מחובר", out.Message)
}

func TestCreateReview_Flow(t *testing.T) {
	env := setupApp(t)
	owner, _ := env.user(t, models.RoleTruckOwner)
	truck := env.truck(t, owner.ID)
	_, token := env.user(t, models.RoleUser)
	path := "/api/v1/trucks/" + truck.ID + "/reviews"

	t.Run("rating out of range persists nothing", func(t *testing.T) {
		resp, out := env.do(t, http.MethodPost, path, token, fiber.Map{"rating": 6, "content": "Great coffee!"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, out.Success)
		assert.NotEmpty(t, out.Message)

		reviews, err := env.reviews.ListByTruck(context.Background(), truck.ID)
		require.NoError(t, err)
		assert.Empty(t, reviews)
	})

	t.Run("fractional rating rejected", func(t *testing.T) {
		resp, _ := env.do(t, http.MethodPost, path, token, fiber.Map{"rating": 4.5, "content": "Great coffee!"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("created and trimmed", func(t *testing.T) {
		resp, out := env.do(t, http.MethodPost, path, token, fiber.Map{"rating": 5, "content": "  Great coffee!  "})
		require.Equal(t, http.StatusCreated, resp.StatusCode, out.Message)
		assert.True(t, out.Success)
		require.NotNil(t, out.Review)
		assert.Equal(t, "Great coffee!", out.Review.Content)
		assert.Equal(t, 5, out.Review.Rating)
	})

	t.Run("second review is a conflict", func(t *testing.T) {
		resp, out := env.do(t, http.MethodPost, path, token, fiber.Map{"rating": 2, "content": "Changed my mind"})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "כבר כתבת ביקורת על עגלה זו", out.Message)

		reviews, err := env.reviews.ListByTruck(context.Background(), truck.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 1)
	})

	t.Run("unknown truck", func(t *testing.T) {
		resp, out := env.do(t, http.MethodPost, "/api/v1/trucks/nope/reviews", token,
			fiber.Map{"rating": 5, "content": "Great coffee!"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "העגלה לא נמצאה", out.Message)
	})
}

func TestReviewMutation_OnlyAuthor(t *testing.T) {
	env := setupApp(t)
	owner, _ := env.user(t, models.RoleTruckOwner)
	truck := env.truck(t, owner.ID)
	author, authorToken := env.user(t, models.RoleUser)
	_, otherToken := env.user(t, models.RoleUser)
	_, adminToken := env.user(t, models.RoleAdmin)

	review := &models.Review{TruckID: truck.ID, UserID: author.ID, Rating: 3, Content: "It was okay-ish"}
	require.NoError(t, env.reviews.Create(context.Background(), review))
	path := "/api/v1/reviews/" + review.ID
	edit := fiber.Map{"rating": 1, "content": "Vandalised review"}

	for name, token := range map[string]string{"other user": otherToken, "admin": adminToken} {
		t.Run(name+" cannot update", func(t *testing.T) {
			resp, _ := env.do(t, http.MethodPut, path, token, edit)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
		t.Run(name+" cannot delete", func(t *testing.T) {
			resp, _ := env.do(t, http.MethodDelete, path, token, nil)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}

	stored, err := env.reviews.GetByID(context.Background(), review.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Rating)

	resp, out := env.do(t, http.MethodPut, path, authorToken, fiber.Map{"rating": 4, "content": "Better than last time"})
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Message)
	assert.Equal(t, 4, out.Review.Rating)

	resp, out = env.do(t, http.MethodDelete, path, authorToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Message)
	assert.True(t, out.Success)

	resp, out = env.do(t, http.MethodDelete, path, authorToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "הביקורת לא נמצאה", out.Message)
}

func TestCreateTruck_Roles(t *testing.T) {
	env := setupApp(t)
	body := fiber.Map{"name": "Brew Wagon", "city": "Tel Aviv", "address": "12 Rothschild Blvd"}

	t.Run("plain user forbidden", func(t *testing.T) {
		_, token := env.user(t, models.RoleUser)
		resp, out := env.do(t, http.MethodPost, "/api/v1/trucks", token, body)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.NotEmpty(t, out.Message)
	})

	t.Run("owner creates", func(t *testing.T) {
		owner, token := env.user(t, models.RoleTruckOwner)
		resp, out := env.do(t, http.MethodPost, "/api/v1/trucks", token, body)
		require.Equal(t, http.StatusCreated, resp.StatusCode, out.Message)

		var truck models.CoffeeTruck
		require.NoError(t, json.Unmarshal(out.Truck, &truck))
		assert.Equal(t, owner.ID, truck.OwnerID)
	})

	t.Run("missing address", func(t *testing.T) {
		_, token := env.user(t, models.RoleTruckOwner)
		resp, _ := env.do(t, http.MethodPost, "/api/v1/trucks", token, fiber.Map{"name": "Brew", "city": "Haifa"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("session without a user record", func(t *testing.T) {
		token, err := env.verifier.Sign(uuid.New().String(), time.Hour)
		require.NoError(t, err)
		resp, out := env.do(t, http.MethodPost, "/api/v1/trucks", token, body)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "המשתמש לא נמצא", out.Message)
	})
}

func TestUpdateTruck_InvalidatesViews(t *testing.T) {
	env := setupApp(t)
	owner, ownerToken := env.user(t, models.RoleTruckOwner)
	_, otherOwnerToken := env.user(t, models.RoleTruckOwner)
	_, adminToken := env.user(t, models.RoleAdmin)
	truck := env.truck(t, owner.ID)
	ctx := context.Background()

	// Warm both views.
	resp, _ := env.do(t, http.MethodGet, "/api/v1/trucks", "", nil)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	resp, _ = env.do(t, http.MethodGet, "/api/v1/trucks/"+truck.ID, "", nil)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	resp, _ = env.do(t, http.MethodGet, "/api/v1/trucks", "", nil)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	resp, _ = env.do(t, http.MethodPut, "/api/v1/trucks/"+truck.ID, otherOwnerToken,
		fiber.Map{"name": "Hijacked", "city": "Haifa", "address": "1 Port St"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	_, ok, _ := env.views.Get(ctx, cache.TrucksPath)
	assert.True(t, ok, "a rejected update must not invalidate")

	resp, out := env.do(t, http.MethodPut, "/api/v1/trucks/"+truck.ID, ownerToken,
		fiber.Map{"name": "Brew Wagon 2", "city": "Haifa", "address": "2 Port St"})
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Message)

	_, ok, _ = env.views.Get(ctx, cache.TrucksPath)
	assert.False(t, ok)
	_, ok, _ = env.views.Get(ctx, cache.TruckPath(truck.ID))
	assert.False(t, ok)

	resp, out = env.do(t, http.MethodPut, "/api/v1/trucks/"+truck.ID, adminToken,
		fiber.Map{"name": "Admin Edit", "city": "Haifa", "address": "2 Port St"})
	require.Equal(t, http.StatusOK, resp.StatusCode, out.Message)

	stored, err := env.trucks.GetByID(ctx, truck.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin Edit", stored.Name)
	assert.Equal(t, owner.ID, stored.OwnerID)
}

func TestListTrucks_Ratings(t *testing.T) {
	env := setupApp(t)
	owner, _ := env.user(t, models.RoleTruckOwner)
	truck := env.truck(t, owner.ID)
	ctx := context.Background()
	for _, r := range []int{5, 4} {
		u, _ := env.user(t, models.RoleUser)
		require.NoError(t, env.reviews.Create(ctx, &models.Review{TruckID: truck.ID, UserID: u.ID, Rating: r, Content: "Solid espresso"}))
	}

	resp, out := env.do(t, http.MethodGet, "/api/v1/trucks", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, out.Trucks, 1)
	assert.InDelta(t, 4.5, out.Trucks[0].AvgRating, 1e-9)
	assert.Equal(t, 2, out.Trucks[0].ReviewCount)

	resp, out = env.do(t, http.MethodGet, "/api/v1/trucks/"+truck.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail struct {
		Owner   *models.User    `json:"owner"`
		Reviews []models.Review `json:"reviews"`
	}
	require.NoError(t, json.Unmarshal(out.Truck, &detail))
	require.NotNil(t, detail.Owner)
	assert.Empty(t, detail.Owner.Email)
	assert.Len(t, detail.Reviews, 2)
}

func TestMe(t *testing.T) {
	env := setupApp(t)
	user, token := env.user(t, models.RoleTruckOwner)

	resp, out := env.do(t, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, out.Success)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, user.ID, me.User.ID)
	assert.Equal(t, models.RoleTruckOwner, me.User.Role)
	assert.Equal(t, user.Email, me.User.Email)
}
