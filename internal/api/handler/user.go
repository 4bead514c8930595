package handler

import (
	"net/http"
	"strings"

	"github.com/ayo6706/retail-ledger/internal/api/middleware"
	"github.com/ayo6706/retail-ledger/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type createCustomerRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
}

// CreateCustomer registers a customer with a first account. It serves both
// self-registration and staff-created customers; the actor is recorded.
func (h *UserHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	customer, err := h.svc.RegisterCustomer(r.Context(), middleware.UsernameFromContext(r.Context()), service.RegisterCustomerCmd{
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		Username:    req.Username,
		Password:    req.Password,
		AccountType: req.AccountType,
	})
	if err != nil {
		respondDomainError(w, r, err, "create customer")
		return
	}
	RespondJSON(w, http.StatusCreated, customer)
}

func (h *UserHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Name     string `json:"name"`
		Phone    string `json:"phone"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	employee, err := h.svc.RegisterEmployee(r.Context(), actor, service.RegisterEmployeeCmd{
		Name:     req.Name,
		Phone:    req.Phone,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondDomainError(w, r, err, "create employee")
		return
	}
	RespondJSON(w, http.StatusCreated, employee)
}

// Profile returns the caller with all accounts and loans.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	customer, err := h.svc.CustomerProfile(r.Context(), username)
	if err != nil {
		respondDomainError(w, r, err, "get profile")
		return
	}
	RespondJSON(w, http.StatusOK, customer)
}

func (h *UserHandler) OpenAccount(w http.ResponseWriter, r *http.Request) {
	username, ok := requestUser(w, r)
	if !ok {
		return
	}
	var req struct {
		AccountType string `json:"account_type"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	account, err := h.svc.OpenAccount(r.Context(), username, req.AccountType)
	if err != nil {
		respondDomainError(w, r, err, "open account")
		return
	}
	RespondJSON(w, http.StatusCreated, account)
}

func (h *UserHandler) FindCustomer(w http.ResponseWriter, r *http.Request) {
	name, ok := nameQuery(w, r)
	if !ok {
		return
	}
	customer, err := h.svc.FindCustomerByName(r.Context(), name)
	if err != nil {
		respondDomainError(w, r, err, "find customer")
		return
	}
	RespondJSON(w, http.StatusOK, customer)
}

func (h *UserHandler) FindEmployee(w http.ResponseWriter, r *http.Request) {
	name, ok := nameQuery(w, r)
	if !ok {
		return
	}
	employee, err := h.svc.FindEmployeeByName(r.Context(), name)
	if err != nil {
		respondDomainError(w, r, err, "find employee")
		return
	}
	RespondJSON(w, http.StatusOK, employee)
}

func nameQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		RespondError(w, r, http.StatusBadRequest, "request/missing-name", "name query parameter is required")
		return "", false
	}
	return name, true
}
