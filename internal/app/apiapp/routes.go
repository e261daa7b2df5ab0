package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/config"
	authsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/auth"
	discoverysvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/discovery"
	interestsvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/interests"
	likessvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/likes"
	matchessvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/matches"
	messagesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/messages"
	photosvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/photos"
	presencesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/presence"
	profilesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/profiles"
	swipesvc "github.com/Web-Spark-Develoer/connect-naija-safe/internal/services/swipes"
	"github.com/Web-Spark-Develoer/connect-naija-safe/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService      *authsvc.Service
	ProfileService   *profilesvc.Service
	PresenceService  *presencesvc.Service
	InterestService  *interestsvc.Service
	DiscoveryService *discoverysvc.Service
	SwipeService     *swipesvc.Service
	LikeService      *likessvc.Service
	MatchService     *matchessvc.Service
	MessageService   *messagesvc.Service
	PhotoService     *photosvc.Service
	Logger           *zap.Logger
	Config           config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	presenceHandler := handlers.NewPresenceHandler(deps.PresenceService)
	interestHandler := handlers.NewInterestHandler(deps.InterestService)
	discoveryHandler := handlers.NewDiscoveryHandler(deps.DiscoveryService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	likesHandler := handlers.NewLikesHandler(deps.LikeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	messageHandler := handlers.NewMessageHandler(deps.MessageService)
	photoHandler := handlers.NewPhotoHandler(deps.PhotoService)
	authMW := AuthMiddleware(deps.AuthService, deps.Logger)

	r.Get("/healthz", healthHandler.Get)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/refresh", authHandler.Refresh)
		r.With(authMW).Post("/logout", authHandler.Logout)
		r.With(authMW).Post("/logout_all", authHandler.LogoutAll)
	})

	r.Route("/profile", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", profileHandler.Get)
		r.Post("/", profileHandler.Create)
		r.Patch("/", profileHandler.Update)
		r.Get("/quota", profileHandler.Quota)
		r.Get("/interests", interestHandler.Mine)
		r.Put("/interests", interestHandler.Replace)
	})

	r.Route("/presence", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/heartbeat", presenceHandler.Heartbeat)
		r.Get("/{userID}", presenceHandler.Get)
	})

	r.Route("/photos", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/", photoHandler.Upload)
		r.Get("/", photoHandler.List)
		r.Delete("/{id}", photoHandler.Delete)
		r.Post("/{id}/primary", photoHandler.SetPrimary)
	})

	r.With(authMW).Get("/interests", interestHandler.Catalog)
	r.With(authMW).Get("/discovery", discoveryHandler.Handle)
	r.With(authMW).Post("/swipes", swipeHandler.Handle)
	r.With(authMW).Get("/likes/incoming", likesHandler.Incoming)
	r.With(authMW).Post("/blocks", matchesHandler.Block)
	r.With(authMW).Post("/reports", matchesHandler.Report)
	r.With(authMW).Get("/conversations", messageHandler.Conversations)

	r.Route("/matches", func(r chi.Router) {
		r.Use(authMW)
		r.Get("/", matchesHandler.List)
		r.Post("/{id}/unmatch", matchesHandler.Unmatch)
		r.Get("/{id}/messages", messageHandler.Thread)
		r.Post("/{id}/messages", messageHandler.Send)
		r.Post("/{id}/messages/read", messageHandler.MarkRead)
	})
}
