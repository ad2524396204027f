package v1

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/switchboard/internal/observability"
	"github.com/hrygo/switchboard/internal/profile"
	"github.com/hrygo/switchboard/plugin/ai"
	"github.com/hrygo/switchboard/plugin/ai/agent"
	"github.com/hrygo/switchboard/plugin/ai/cache"
	"github.com/hrygo/switchboard/plugin/ai/handler"
	"github.com/hrygo/switchboard/plugin/ai/router"
	"github.com/hrygo/switchboard/plugin/ai/session"
	"github.com/hrygo/switchboard/plugin/ai/timeout"
	"github.com/hrygo/switchboard/plugin/remote"
	"github.com/hrygo/switchboard/server/middleware"
	"github.com/hrygo/switchboard/store"
)

const (
	// loginAttemptsPerSecond bounds password guessing per client address.
	loginAttemptsPerSecond = 1

	classifierCacheSize = 1024
	classifierCacheTTL  = 10 * time.Minute
)

type APIV1Service struct {
	Profile    *profile.Profile
	Store      *store.Store
	AIConfig   *ai.Config
	Sessions   *session.Store
	Router     *router.Router
	Dispatcher *agent.Dispatcher
	Auth       *handler.Authenticator
	Remote     *remote.Client
	Metrics    *observability.Metrics

	chatLimiter  *middleware.RateLimiter
	loginLimiter *middleware.RateLimiter
}

// NewAPIV1Service wires the routing core from the profile. llm overrides
// the provider built from the profile when non-nil.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, llm ai.LLMService) (*APIV1Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}

	aiConfig := ai.NewConfigFromProfile(profile)
	if err := aiConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid AI config")
	}
	if llm == nil {
		retry := ai.DefaultRetryConfig()
		if profile.MaxConcurrentCalls > 0 {
			retry.MaxConcurrent = int64(profile.MaxConcurrentCalls)
		}
		svc, err := ai.NewServiceFromConfig(aiConfig, retry)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create LLM service")
		}
		llm = svc
	}

	sessions := session.NewStore(profile.HistoryCap)
	remoteClient := remote.NewClient(remote.Config{
		BaseURL: profile.RemoteModuleURL,
		Timeout: timeout.RemoteModuleTimeout,
		Poll: remote.PollConfig{
			MaxAttempts: profile.RemotePollAttempts,
			Interval:    timeout.RemotePollInterval,
		},
	})
	auth := handler.NewAuthenticator(store)

	rules := router.NewRuleMatcher()
	var llmClassifier *router.LLMClassifier
	// The echo provider cannot score intent; its replies would be parsed
	// as probabilities.
	if aiConfig.LLM.Provider != ai.ProviderEcho {
		llmClassifier = router.NewLLMClassifier(llm, aiConfig.ModelFor(ai.TaskIntentClassification)).
			WithCache(cache.NewLRU[float64](classifierCacheSize, classifierCacheTTL))
	}
	classifier := router.NewClassifier(rules, llmClassifier, router.ClassifierConfig{
		EnterThreshold: profile.ClassifierEnterThreshold,
		StayThreshold:  profile.ClassifierStayThreshold,
	})

	handlers := handler.NewTable(handler.Deps{
		LLM:    llm,
		Config: aiConfig,
		Auth:   auth,
		Remote: remoteClient,
	})
	r := router.New(router.Config{RegistrationThreshold: profile.RegistrationThreshold}, rules, classifier, handlers, store)
	if err := r.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid router")
	}

	metrics := observability.NewMetrics()
	adapter := agent.NewToolAdapter(llm, aiConfig.ModelFor(ai.TaskRouting), aiConfig.ModelFor(ai.TaskComposition))

	return &APIV1Service{
		Profile:      profile,
		Store:        store,
		AIConfig:     aiConfig,
		Sessions:     sessions,
		Router:       r,
		Dispatcher:   agent.NewDispatcher(sessions, r, adapter, metrics),
		Auth:         auth,
		Remote:       remoteClient,
		Metrics:      metrics,
		chatLimiter:  middleware.NewRateLimiter(profile.ChatRateLimit, profile.ChatRateBurst),
		loginLimiter: middleware.NewRateLimiter(loginAttemptsPerSecond, 5),
	}, nil
}

// RegisterRoutes registers the JSON API on the echo server.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	e.POST("/chat", s.Chat)
	e.POST("/login", s.Login, middleware.RateLimit(s.loginLimiter, func(c echo.Context) string {
		return c.RealIP()
	}))
	e.GET("/health", s.Health)
	e.GET("/sessions", s.ListSessions)
	e.GET("/session/:id", s.GetSession)
	e.DELETE("/session/:id", s.DeleteSession)
}
