package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"app/internal/api/v1/dto"
	"app/internal/middleware"
	"app/internal/model"
	"app/internal/service"
	"app/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const oauthStateCookie = "oauth_state"

// AuthHandler handles registration, login and the Google OAuth flow.
type AuthHandler struct {
	userService service.UserService
	google      *service.GoogleProvider
	validate    *validator.Validate
	jwtSecret   string
	successURL  string
	logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler. The google provider may be
// nil when OAuth credentials are not configured.
func NewAuthHandler(userService service.UserService, google *service.GoogleProvider, v *validator.Validate, jwtSecret, successURL string, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		google:      google,
		validate:    v,
		jwtSecret:   jwtSecret,
		successURL:  successURL,
		logger:      logger,
	}
}

// RegisterRoutes mounts the API auth routes. Register and login are
// unauthenticated; /user requires a valid token.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.HandleFunc("/register", h.register)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("/logout", h.logout)
	mux.Handle("/user", authMw(http.HandlerFunc(h.currentUser)))
}

// RegisterOAuthRoutes mounts the browser-facing Google OAuth flow on
// the root mux, outside the API prefix.
func (h *AuthHandler) RegisterOAuthRoutes(mux *http.ServeMux) {
	if h.google == nil {
		return
	}
	mux.HandleFunc("/auth/google", h.googleRedirect)
	mux.HandleFunc("/auth/google/callback", h.googleCallback)
}

// register godoc
// @Summary Register a new account
// @Description Creates a user and returns a signed session token.
// @Tags auth
// @Accept json
// @Produce json
// @Param user body dto.RegisterDTO true "Registration request"
// @Success 201 {object} dto.AuthResponseDTO
// @Failure 400 {string} string "validation failed"
// @Failure 409 {string} string "username or email taken"
// @Router /register [post]
func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error().Err(err).Msg("failed to register user")
			http.Error(w, "failed to register user", http.StatusInternalServerError)
		}
		return
	}

	h.writeAuthResponse(w, user, http.StatusCreated)
}

// login godoc
// @Summary Log in with username or email
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginDTO true "Login request"
// @Success 200 {object} dto.AuthResponseDTO
// @Failure 401 {string} string "invalid credentials"
// @Router /login [post]
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.Error().Err(err).Msg("failed to log in user")
		http.Error(w, "failed to log in", http.StatusInternalServerError)
		return
	}

	h.writeAuthResponse(w, user, http.StatusOK)
}

// logout exists so clients have a uniform auth surface; tokens are
// stateless, so discarding the token on the client is what logs out.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "logged out"})
}

// currentUser godoc
// @Summary Get the authenticated user
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserResponseDTO
// @Failure 401 {string} string "unauthorized"
// @Router /user [get]
func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toUserResponse(user))
}

func (h *AuthHandler) googleRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := util.RandomState()
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate oauth state")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) googleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "invalid oauth state", http.StatusBadRequest)
		return
	}
	// The state cookie is single use.
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}
	gu, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error().Err(err).Msg("google oauth exchange failed")
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	user, err := h.userService.LoginOrRegisterGoogle(r.Context(), gu.ID, gu.Email, gu.Name)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to resolve google user")
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	token, err := util.GenerateJWT(user.ID, h.jwtSecret, util.SessionTokenTTL)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign session token")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, h.successURL+"?token="+token, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) writeAuthResponse(w http.ResponseWriter, user *model.User, status int) {
	token, err := util.GenerateJWT(user.ID, h.jwtSecret, util.SessionTokenTTL)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign session token")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	resp := dto.AuthResponseDTO{Token: token, User: toUserResponse(user)}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func toUserResponse(u *model.User) dto.UserResponseDTO {
	resp := dto.UserResponseDTO{
		ID:                        u.ID,
		Username:                  u.Username,
		Email:                     u.Email,
		IsPro:                     u.IsPro,
		DailyConversionsRemaining: u.DailyConversionsRemaining,
		CreatedAt:                 u.CreatedAt,
	}
	if u.DisplayName != nil {
		resp.DisplayName = *u.DisplayName
	}
	return resp
}
