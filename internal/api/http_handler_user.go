package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"hardware-catalog-service/internal/domain"
	"hardware-catalog-service/internal/store"
)

// LoginInput defines the expected input for authentication.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the signed token plus the account it belongs to.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user, err := h.userStore.GetUserByEmail(r.Context(), input.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("ERROR: Login store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		log.Printf("ERROR: Login failed to issue token: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to authenticate")
		return
	}

	respondWithJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// UserCreateInput defines the expected input for creating a user account.
type UserCreateInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Name     string `json:"name" validate:"required,max=255"`
	Role     string `json:"role" validate:"required,oneof=user manager admin"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input UserCreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("ERROR: CreateUser failed to hash password: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := &domain.User{
		Email:        input.Email,
		Name:         input.Name,
		Role:         input.Role,
		PasswordHash: string(hash),
	}

	created, err := h.userStore.CreateUser(r.Context(), user)
	if err != nil {
		log.Printf("ERROR: CreateUser store operation failed: %v", err)
		if errors.Is(err, store.ErrUserEmailTaken) {
			respondWithError(w, http.StatusConflict, store.ErrUserEmailTaken.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to create user")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	pageStr := r.URL.Query().Get("page")

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 10 // Default limit
	}
	if limit > 100 { // Max limit
		limit = 100
	}

	page, err := strconv.Atoi(pageStr)
	if err != nil || page <= 0 {
		page = 1 // Default page
	}
	offset := (page - 1) * limit

	users, totalCount, err := h.userStore.ListUsers(r.Context(), store.ListUsersParams{Limit: limit, Offset: offset})
	if err != nil {
		log.Printf("ERROR: ListUsers store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}

	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}

	response := struct {
		Data       []domain.User `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalItems int `json:"total_items"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}{Data: users}
	response.Pagination.Page = page
	response.Pagination.Limit = limit
	response.Pagination.TotalItems = totalCount
	response.Pagination.TotalPages = totalPages

	respondWithJSON(w, http.StatusOK, response)
}

func (h *HTTPHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "userId")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	user, err := h.userStore.GetUserByID(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR: GetUserByID store operation for ID %d failed: %v", userID, err)
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrUserNotFound.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to retrieve user")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// UserUpdateInput defines the expected input for updating a user account.
type UserUpdateInput struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"required,max=255"`
	Role  string `json:"role" validate:"required,oneof=user manager admin"`
}

func (h *HTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "userId")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var input UserUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	user := &domain.User{
		ID:    userID,
		Email: input.Email,
		Name:  input.Name,
		Role:  input.Role,
	}

	updated, err := h.userStore.UpdateUser(r.Context(), user)
	if err != nil {
		log.Printf("ERROR: UpdateUser store operation for ID %d failed: %v", userID, err)
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrUserNotFound.Error())
		} else if errors.Is(err, store.ErrUserEmailTaken) {
			respondWithError(w, http.StatusConflict, store.ErrUserEmailTaken.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "userId")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || userID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	err = h.userStore.DeleteUser(r.Context(), userID)
	if err != nil {
		log.Printf("ERROR: DeleteUser store operation for ID %d failed: %v", userID, err)
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrUserNotFound.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}
