package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qa-board/internal/auth"
	"qa-board/internal/cache"
	"qa-board/internal/domain"
	"qa-board/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	questions   service.QuestionService
	answers     service.AnswerService
	stats       service.StatsService
	tokens      *auth.TokenService
	cache       cache.Cache
	invalidator *cache.Invalidator
	cacheTTL    time.Duration
	logger      *logrus.Logger

	advancedSearchEnabled bool
}

type HandlerConfig struct {
	Users                 service.UserService
	Questions             service.QuestionService
	Answers               service.AnswerService
	Stats                 service.StatsService
	Tokens                *auth.TokenService
	Cache                 cache.Cache
	CacheTTL              time.Duration
	Logger                *logrus.Logger
	AdvancedSearchEnabled bool
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		users:                 cfg.Users,
		questions:             cfg.Questions,
		answers:               cfg.Answers,
		stats:                 cfg.Stats,
		tokens:                cfg.Tokens,
		cache:                 cfg.Cache,
		invalidator:           cache.NewInvalidator(cfg.Cache, cfg.Logger),
		cacheTTL:              cfg.CacheTTL,
		logger:                cfg.Logger,
		advancedSearchEnabled: cfg.AdvancedSearchEnabled,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	requireAuth := RequireAuth(h.tokens)
	cached := CacheResponses(h.cache, h.cacheTTL, h.logger)

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signin", h.signIn)
		}

		users := api.Group("/users")
		{
			users.POST("", h.signup)
			users.POST("/with-question", h.signupWithQuestion)
			users.POST("/stats", h.computeStats)
			users.GET("/search", h.searchUsers)
			users.GET("/:id", h.getUser)
			users.PATCH("/:id", requireAuth, h.updateUser)
			users.DELETE("/:id", requireAuth, h.deleteUser)
		}

		questions := api.Group("/questions")
		{
			questions.POST("", requireAuth, h.createQuestion)
			questions.GET("", cached, h.listQuestions)
			questions.GET("/:id", cached, h.getQuestion)
			questions.PATCH("/:id", requireAuth, RequireOwnership(h.questions, "id"), h.updateQuestion)
			questions.DELETE("/:id", requireAuth, RequireOwnership(h.questions, "id"), h.deleteQuestion)
			questions.GET("/details/all", requireAuth, h.listQuestionsWithAuthors)
			questions.GET("/search/by-title", requireAuth, h.searchQuestions)
			questions.GET("/search/advanced", RequireFeature(h.advancedSearchEnabled), h.advancedSearch)
		}

		answers := api.Group("/answers")
		{
			answers.POST("/:questionId", requireAuth, h.createAnswer)
			answers.GET("", requireAuth, h.listAnswers)
			answers.GET("/:id", requireAuth, h.getAnswer)
			answers.PATCH("/:id", requireAuth, RequireOwnership(h.answers, "id"), h.updateAnswer)
			answers.DELETE("/:id", requireAuth, RequireOwnership(h.answers, "id"), h.deleteAnswer)
		}
	}
}

// respondError maps the domain error taxonomy to HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not own this resource"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "a record with these details already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// --- auth ---

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// --- users ---

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type signupWithQuestionRequest struct {
	signupRequest
	Question struct {
		Title string `json:"title" binding:"required"`
		Body  string `json:"body"`
	} `json:"question" binding:"required"`
}

type updateUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Signup(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) signupWithQuestion(c *gin.Context) {
	var req signupWithQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.SignupWithFirstQuestion(
		c.Request.Context(),
		req.Email, req.Name, req.Password,
		req.Question.Title, req.Question.Body,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userToResponse(user))
}

func (h *Handler) getUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) updateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Update(c.Request.Context(), c.Param("id"), req.Email, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

func (h *Handler) searchUsers(c *gin.Context) {
	users, err := h.users.SearchByName(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]gin.H, len(users))
	for i, u := range users {
		resp[i] = gin.H{"id": u.ID, "name": u.Name, "email": u.Email}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) computeStats(c *gin.Context) {
	var opts service.StatsOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := h.stats.Compute(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// --- questions ---

type createQuestionRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

type updateQuestionRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *Handler) createQuestion(c *gin.Context) {
	subject, ok := SubjectFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	var req createQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questions.Create(c.Request.Context(), subject, req.Title, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	// a new question changes every listing
	h.invalidator.InvalidateQuestion(c.Request.Context(), question.ID)
	c.JSON(http.StatusCreated, questionToResponse(*question))
}

func (h *Handler) listQuestions(c *gin.Context) {
	page, err := intQuery(c, "page", service.DefaultPage)
	if err != nil {
		respondError(c, err)
		return
	}
	pageSize, err := intQuery(c, "pageSize", service.DefaultPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.questions.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]QuestionResponse, len(result.Data))
	for i := range result.Data {
		data[i] = questionToResponse(result.Data[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        data,
		"totalPages":  result.TotalPages,
		"currentPage": result.CurrentPage,
	})
}

func (h *Handler) getQuestion(c *gin.Context) {
	question, err := h.questions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questionToResponse(*question))
}

func (h *Handler) updateQuestion(c *gin.Context) {
	var req updateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.questions.Update(c.Request.Context(), c.Param("id"), req.Title, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	// evict before the success response leaves the process
	h.invalidator.InvalidateQuestion(c.Request.Context(), question.ID)
	c.JSON(http.StatusOK, questionToResponse(*question))
}

func (h *Handler) deleteQuestion(c *gin.Context) {
	id := c.Param("id")
	if err := h.questions.SoftDelete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	h.invalidator.InvalidateQuestion(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *Handler) listQuestionsWithAuthors(c *gin.Context) {
	questions, err := h.questions.ListWithAuthors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]gin.H, len(questions))
	for i, q := range questions {
		resp[i] = gin.H{"id": q.ID, "title": q.Title, "body": q.Body, "author": q.AuthorName}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) searchQuestions(c *gin.Context) {
	questions, err := h.questions.SearchByTitle(c.Request.Context(), c.Query("term"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]QuestionResponse, len(questions))
	for i := range questions {
		resp[i] = questionToResponse(questions[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) advancedSearch(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "advanced search feature is active",
		"query":   c.Query("q"),
	})
}

// --- answers ---

type answerBodyRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *Handler) createAnswer(c *gin.Context) {
	subject, ok := SubjectFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	var req answerBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.answers.Create(c.Request.Context(), subject, c.Param("questionId"), req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	// the parent question's cached detail embeds its answers
	h.invalidator.InvalidateQuestion(c.Request.Context(), answer.QuestionID)
	c.JSON(http.StatusCreated, answerToResponse(*answer))
}

func (h *Handler) listAnswers(c *gin.Context) {
	page, err := intQuery(c, "page", service.DefaultPage)
	if err != nil {
		respondError(c, err)
		return
	}
	pageSize, err := intQuery(c, "pageSize", service.DefaultPageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.answers.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	data := make([]AnswerResponse, len(result.Data))
	for i := range result.Data {
		data[i] = answerToResponse(result.Data[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        data,
		"totalPages":  result.TotalPages,
		"currentPage": result.CurrentPage,
	})
}

func (h *Handler) getAnswer(c *gin.Context) {
	answer, err := h.answers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, answerToResponse(*answer))
}

func (h *Handler) updateAnswer(c *gin.Context) {
	var req answerBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.answers.Update(c.Request.Context(), c.Param("id"), req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidator.InvalidateQuestion(c.Request.Context(), answer.QuestionID)
	c.JSON(http.StatusOK, answerToResponse(*answer))
}

func (h *Handler) deleteAnswer(c *gin.Context) {
	answer, err := h.answers.SoftDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidator.InvalidateQuestion(c.Request.Context(), answer.QuestionID)
	c.JSON(http.StatusOK, gin.H{"deleted": answer.ID})
}

// --- responses ---

type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type QuestionResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	UserID      string           `json:"user_id"`
	AuthorName  string           `json:"author_name,omitempty"`
	AuthorEmail string           `json:"author_email,omitempty"`
	AnswerCount int              `json:"answer_count"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
	Answers     []AnswerResponse `json:"answers,omitempty"`
}

type AnswerResponse struct {
	ID         string `json:"id"`
	Body       string `json:"body"`
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.Format(time.RFC3339),
	}
}

func questionToResponse(q domain.Question) QuestionResponse {
	resp := QuestionResponse{
		ID:          q.ID,
		Title:       q.Title,
		Body:        q.Body,
		UserID:      q.UserID,
		AuthorName:  q.AuthorName,
		AuthorEmail: q.AuthorEmail,
		AnswerCount: q.AnswerCount,
		CreatedAt:   q.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   q.UpdatedAt.Format(time.RFC3339),
	}
	if len(q.Answers) > 0 {
		resp.Answers = make([]AnswerResponse, len(q.Answers))
		for i := range q.Answers {
			resp.Answers[i] = answerToResponse(q.Answers[i])
		}
		resp.AnswerCount = len(q.Answers)
	}
	return resp
}

func answerToResponse(a domain.Answer) AnswerResponse {
	return AnswerResponse{
		ID:         a.ID,
		Body:       a.Body,
		UserID:     a.UserID,
		QuestionID: a.QuestionID,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
}

// intQuery reads an integer query parameter. An absent parameter falls back
// to the default; a malformed one is a 400, not a silent default.
func intQuery(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return v, nil
}
