package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/cinema-back-office/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/cinema-back-office/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Create a route group under the /v1/auth prefix for operations that do
	// not require an existing session (register, login, refresh).  Each of
	// these handlers is responsible for generating or exchanging tokens.
	g := e.Group("/v1/auth")
	// Register a POST endpoint to handle user registration at /v1/auth/register.
	g.POST("/register", a.Register)
	// Register a POST endpoint to handle user login at /v1/auth/login.
	g.POST("/login", a.Login)
	// Register a POST endpoint to refresh access tokens at /v1/auth/refresh. This rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Register a POST endpoint to issue a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Register a POST endpoint to log out using a refresh token.  The handler
	// accepts a JSON body containing a `refresh_token` and will invalidate
	// that token.
	g.POST("/logout", a.Logout)
	// Register a GET endpoint that completes e-mail verification.  The link in
	// the verification letter points here with a signed token in the query.
	g.GET("/verify-email", a.VerifyEmail)

	// Create another group for routes that require a valid access token.  All
	// handlers registered on this group will execute the JWTAuth middleware
	// before being invoked.  Protected endpoints live under /v1.
	auth := e.Group("/v1")
	// Apply the JWTAuth middleware to the protected group using the provided secret.
	auth.Use(middleware.JWTAuth(jwtSecret))
	// Any authenticated role may read its own profile.
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	// Register a GET endpoint at /v1/me that returns the authenticated user's information.
	auth.GET("/me", a.Me)
}

// RegisterCatalog registers the unauthenticated reference listings: genres,
// age rates and halls.  The cache middleware is applied so these rarely
// changing lists are served from Redis.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/genres", h.GetGenres, cache)
	e.GET("/v1/age-rates", h.GetAgeRates, cache)
	e.GET("/v1/halls", h.GetHalls, cache)
}

// RegisterMovies registers the repertoire endpoints.  Browsing is public;
// creating and updating movies is restricted to administrators.
func RegisterMovies(e *echo.Echo, h *handler.MovieHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	// Public browse endpoints.  The listing is cached; the detail page is
	// not, because it carries a live external rating.
	e.GET("/v1/movies", h.GetMovies, cache)
	e.GET("/v1/movie/find", h.FindMovie)
	e.GET("/v1/movie/:movie_id", h.GetMovie)

	// Admin-only mutations.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.POST("/movie", h.CreateMovie)
	g.PUT("/movie/:movie_id", h.UpdateMovie)
}

// RegisterSessions registers the scheduling endpoints.  Reads are public so
// customers can pick a seat; writes require the ADMIN role.
func RegisterSessions(e *echo.Echo, h *handler.SessionHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	// Public reads.  Session types are cached; per-movie listings and the
	// seat map are served live so availability stays fresh.
	e.GET("/v1/session-types", h.GetSessionTypes, cache)
	e.GET("/v1/movie/:movie_id/sessions", h.GetSessionsByMovie)
	e.GET("/v1/session/:session_id", h.GetSessionByID)

	// Admin-only mutations.
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	// POST /v1/session accepts a JSON array and schedules the whole batch
	// atomically.
	g.POST("/session", h.AddSessions)
	g.PUT("/session/:session_id", h.UpdateSession)
	// PUT /v1/sessions applies a batch of partial updates in one transaction.
	g.PUT("/sessions", h.UpdateSessions)
}

// RegisterBookings registers the seat booking endpoint.  Any authenticated
// user may book; the user identity comes from the access token.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "CUSTOMER"),
	)
	g.POST("/booking", h.Book)
}

// RegisterStats registers the reporting endpoints under /v1/stats.  All of
// them are restricted to administrators.
func RegisterStats(e *echo.Echo, h *handler.StatsHandler, jwtSecret string) {
	g := e.Group(
		"/v1/stats",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.GET("/films", h.TopFilms)
	g.GET("/money", h.Money)
	g.GET("/occupancy", h.Occupancy)
}
