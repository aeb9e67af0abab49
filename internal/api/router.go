package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/kostumi/internal/metrics"
	"github.com/erazemk/kostumi/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	costumesHandler := &CostumesHandler{DB: db}
	inventoryHandler := &InventoryHandler{DB: db}
	movementsHandler := &MovementsHandler{DB: db}
	peopleHandler := &PeopleHandler{DB: db}
	eligibilityHandler := &EligibilityHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	read := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	write := func(h http.HandlerFunc) http.Handler { return authMW(requireManager(h)) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public: login and metrics.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.Handle("PUT /api/auth/password", read(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", read(authHandler.Logout))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Costume definitions: read (all roles), write (manager+).
	mux.Handle("GET /api/costumes", read(costumesHandler.List))
	mux.Handle("POST /api/costumes", write(costumesHandler.Create))
	mux.Handle("GET /api/costumes/{id}", read(costumesHandler.Get))
	mux.Handle("PUT /api/costumes/{id}", write(costumesHandler.Update))
	mux.Handle("PUT /api/costumes/{id}/image", write(costumesHandler.UploadImage))
	mux.Handle("GET /api/costumes/{id}/image", read(costumesHandler.GetImage))

	// Inventory items and their ledgers.
	mux.Handle("GET /api/inventory", read(inventoryHandler.List))
	mux.Handle("POST /api/inventory", write(inventoryHandler.Create))
	mux.Handle("GET /api/inventory/available", read(inventoryHandler.Available))
	mux.Handle("GET /api/inventory/{tag}", read(inventoryHandler.Get))
	mux.Handle("GET /api/inventory/{tag}/situation", read(inventoryHandler.Situation))
	mux.Handle("GET /api/inventory/{tag}/movements", read(inventoryHandler.History))
	mux.Handle("POST /api/inventory/{tag}/movements", write(inventoryHandler.AppendMovement))
	mux.Handle("POST /api/inventory/{tag}/loan", write(inventoryHandler.Loan))
	mux.Handle("POST /api/inventory/{tag}/return", write(inventoryHandler.Return))

	mux.Handle("GET /api/movements/{id}", read(movementsHandler.Get))
	mux.Handle("PUT /api/movements/{id}/checks", write(movementsHandler.SetChecks))
	mux.Handle("POST /api/movements/{id}/reconcile", write(movementsHandler.Reconcile))

	mux.Handle("GET /api/eligibility", read(eligibilityHandler.Check))

	// Registration data.
	mux.Handle("GET /api/people", read(peopleHandler.ListPeople))
	mux.Handle("POST /api/people", write(peopleHandler.CreatePerson))
	mux.Handle("GET /api/people/{id}", read(peopleHandler.GetPerson))
	mux.Handle("GET /api/people/{id}/item", read(peopleHandler.HeldItem))
	mux.Handle("GET /api/vehicles", read(peopleHandler.ListVehicles))
	mux.Handle("POST /api/vehicles", write(peopleHandler.CreateVehicle))
	mux.Handle("GET /api/events", read(peopleHandler.ListEvents))
	mux.Handle("POST /api/events", write(peopleHandler.CreateEvent))
	mux.Handle("PUT /api/events/{id}/status", write(peopleHandler.SetEventStatus))
	mux.Handle("GET /api/registrations", read(peopleHandler.ListRegistrations))
	mux.Handle("POST /api/registrations", write(peopleHandler.CreateRegistration))
	mux.Handle("PUT /api/registrations/{id}/approval", write(peopleHandler.SetApproval))

	return mux
}
