package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/config"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/dto"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/handler"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/middleware"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/repository"
	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

// ── In-memory Repository Stub ─────────────────────────────────────────────────

type stubUsuarioRepo struct {
	users map[string]*model.Usuario
}

func newStubRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[string]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	u.ID = uuid.New()
	r.users[u.Username] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	u, ok := r.users[username]
	if !ok || !u.Ativo {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	users := make([]model.Usuario, 0, len(r.users))
	for _, u := range r.users {
		if u.Ativo {
			users = append(users, *u)
		}
	}
	return users, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.users[u.Username] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Ativo = false
			return nil
		}
	}
	return errors.New("not found")
}

func (r *stubUsuarioRepo) Reativar(_ context.Context, id uuid.UUID) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Ativo = true
			return nil
		}
	}
	return errors.New("not found")
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

func newTestCfg() *config.Config {
	return &config.Config{
		JWTSecret:          testSecret,
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
}

func seedAuthUser(t *testing.T, repo *stubUsuarioRepo, username, password, rol string, restauranteID *uuid.UUID) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	assert.NoError(t, err)
	u := &model.Usuario{
		ID: uuid.New(), Username: username, Nome: "Test User",
		PasswordHash: string(hash), Rol: rol, RestauranteID: restauranteID, Ativo: true,
	}
	repo.users[username] = u
	return u
}

func signToken(t *testing.T, userID, rol string, restauranteID *string, dur time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID, "username": "testuser", "rol": rol,
		"exp": time.Now().Add(dur).Unix(), "iat": time.Now().Unix(),
	}
	if restauranteID != nil {
		claims["restaurante_id"] = *restauranteID
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	assert.NoError(t, err)
	return s
}

func doLoginRequest(t *testing.T, svc service.AuthService, req dto.LoginRequest) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authH := handler.NewAuthHandler(svc)
	r.POST("/login", authH.Login)

	body, _ := json.Marshal(req)
	w := httptest.NewRecorder()
	httpReq, _ := http.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, httpReq)
	return w
}

func ginTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.JWTAuth(testSecret))
	r.GET("/protected", func(c *gin.Context) {
		claims := middleware.GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID, "rol": claims.Rol, "restaurante_id": claims.RestauranteID})
	})
	r.GET("/admin", middleware.RequireRole("admin"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

// ── Tests: Login ──────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	repo := newStubRepo()
	seedAuthUser(t, repo, "admin@fomeninja.com", "password123", "admin", nil)
	svc := service.NewAuthService(repo, newTestCfg())

	w := doLoginRequest(t, svc, dto.LoginRequest{Username: "admin@fomeninja.com", Password: "password123"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.LoginResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "admin", resp.User.Rol)
	assert.Nil(t, resp.User.RestauranteID)
}

func TestLogin_RestauranteClaim(t *testing.T) {
	repo := newStubRepo()
	rid := uuid.New()
	seedAuthUser(t, repo, "ninja@fomeninja.com", "password123", "restaurante", &rid)
	svc := service.NewAuthService(repo, newTestCfg())

	w := doLoginRequest(t, svc, dto.LoginRequest{Username: "ninja@fomeninja.com", Password: "password123"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.LoginResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// The tenant id rides inside the access token
	tok, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	assert.NoError(t, err)
	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, rid.String(), claims["restaurante_id"])
	assert.Equal(t, "restaurante", claims["rol"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newStubRepo()
	seedAuthUser(t, repo, "ninja1", "correctpass", "restaurante", nil)
	svc := service.NewAuthService(repo, newTestCfg())

	w := doLoginRequest(t, svc, dto.LoginRequest{Username: "ninja1", Password: "wrongpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_UserNotFound(t *testing.T) {
	repo := newStubRepo()
	svc := service.NewAuthService(repo, newTestCfg())

	w := doLoginRequest(t, svc, dto.LoginRequest{Username: "naoexiste", Password: "anypass123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_ShortPassword_Rejected(t *testing.T) {
	// DTO validation: password must be >= 4 chars
	repo := newStubRepo()
	svc := service.NewAuthService(repo, newTestCfg())

	w := doLoginRequest(t, svc, dto.LoginRequest{Username: "u", Password: "12"})
	// 422 Unprocessable Entity from bindAndValidate
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Tests: Refresh ────────────────────────────────────────────────────────────

func TestRefresh_Success(t *testing.T) {
	repo := newStubRepo()
	u := seedAuthUser(t, repo, "admin2", "pass1234", "admin", nil)
	svc := service.NewAuthService(repo, newTestCfg())

	loginW := doLoginRequest(t, svc, dto.LoginRequest{Username: "admin2", Password: "pass1234"})
	assert.Equal(t, http.StatusOK, loginW.Code)
	var loginResp dto.LoginResponse
	json.Unmarshal(loginW.Body.Bytes(), &loginResp) //nolint

	resp, err := svc.Refresh(context.Background(), loginResp.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, u.Username, resp.User.Username)
}

func TestRefresh_InvalidToken(t *testing.T) {
	repo := newStubRepo()
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.Refresh(context.Background(), "this.is.garbage")
	assert.Error(t, err)
}

func TestRefresh_ExpiredToken(t *testing.T) {
	repo := newStubRepo()
	u := seedAuthUser(t, repo, "ninja2", "pass12345", "restaurante", nil)
	svc := service.NewAuthService(repo, newTestCfg())

	expired := signToken(t, u.ID.String(), "restaurante", nil, -1*time.Second)
	_, err := svc.Refresh(context.Background(), expired)
	assert.Error(t, err)
}

func TestRefresh_InactiveUser(t *testing.T) {
	repo := newStubRepo()
	u := seedAuthUser(t, repo, "demitido", "pass12345", "restaurante", nil)
	svc := service.NewAuthService(repo, newTestCfg())

	loginW := doLoginRequest(t, svc, dto.LoginRequest{Username: "demitido", Password: "pass12345"})
	assert.Equal(t, http.StatusOK, loginW.Code)
	var loginResp dto.LoginResponse
	json.Unmarshal(loginW.Body.Bytes(), &loginResp) //nolint

	u.Ativo = false
	_, err := svc.Refresh(context.Background(), loginResp.RefreshToken)
	assert.Error(t, err, "deactivated user must not refresh")
}

// ── Tests: JWT Middleware ──────────────────────────────────────────────────────

func TestProtectedEndpoint_NoToken(t *testing.T) {
	r := ginTestRouter()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedEndpoint_ValidToken(t *testing.T) {
	r := ginTestRouter()
	rid := uuid.New().String()
	tok := signToken(t, uuid.New().String(), "restaurante", &rid, time.Hour)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), rid)
}

func TestProtectedEndpoint_ExpiredToken(t *testing.T) {
	r := ginTestRouter()
	tok := signToken(t, uuid.New().String(), "restaurante", nil, -time.Second)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_WrongRole(t *testing.T) {
	r := ginTestRouter()
	tok := signToken(t, uuid.New().String(), "restaurante", nil, time.Hour)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_CorrectRole(t *testing.T) {
	r := ginTestRouter()
	tok := signToken(t, uuid.New().String(), "admin", nil, time.Hour)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ── Tests: User CRUD (service layer) ─────────────────────────────────────────

func TestCriarUsuario_Success(t *testing.T) {
	repo := newStubRepo()
	svc := service.NewAuthService(repo, newTestCfg())

	rid := uuid.New().String()
	resp, err := svc.CriarUsuario(context.Background(), dto.CriarUsuarioRequest{
		Username: "novo", Nome: "Novo Usuário", Password: "senhasegura",
		Rol: "restaurante", RestauranteID: &rid,
	})
	assert.NoError(t, err)
	assert.Equal(t, "restaurante", resp.Rol)
	assert.NotEmpty(t, resp.ID)
	assert.NotNil(t, resp.RestauranteID)
}

func TestCriarUsuario_RestauranteSemTenant(t *testing.T) {
	repo := newStubRepo()
	svc := service.NewAuthService(repo, newTestCfg())

	_, err := svc.CriarUsuario(context.Background(), dto.CriarUsuarioRequest{
		Username: "orfao", Nome: "Sem Tenant", Password: "senhasegura",
		Rol: "restaurante",
	})
	assert.Error(t, err, "restaurant user without restaurante_id must be rejected")
}

func TestListarUsuarios(t *testing.T) {
	repo := newStubRepo()
	seedAuthUser(t, repo, "u1", "pass1234", "restaurante", nil)
	seedAuthUser(t, repo, "u2", "pass1234", "admin", nil)
	svc := service.NewAuthService(repo, newTestCfg())

	users, err := svc.ListarUsuarios(context.Background())
	assert.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestDesativarEReativarUsuario(t *testing.T) {
	repo := newStubRepo()
	u := seedAuthUser(t, repo, "tchau", "pass1234", "restaurante", nil)
	svc := service.NewAuthService(repo, newTestCfg())

	err := svc.DesativarUsuario(context.Background(), u.ID)
	assert.NoError(t, err)

	_, err = repo.FindByUsername(context.Background(), "tchau")
	assert.Error(t, err, "soft-deleted user must not be findable")

	err = svc.ReativarUsuario(context.Background(), u.ID)
	assert.NoError(t, err)

	_, err = repo.FindByUsername(context.Background(), "tchau")
	assert.NoError(t, err)
}

func TestBootstrap(t *testing.T) {
	repo := newStubRepo()
	cfg := newTestCfg()
	cfg.StartOffline = true
	svc := service.NewAuthService(repo, cfg)

	assert.True(t, svc.Bootstrap().ForceOffline)
}
