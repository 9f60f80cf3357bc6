package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "chatwire/internal/infrastructure/cache/port"
	"chatwire/internal/infrastructure/config"
	queueport "chatwire/internal/infrastructure/queue/port"
	"chatwire/internal/infrastructure/realtime"
	"chatwire/internal/pkg/chat/application/usecase"
	repoAdapter "chatwire/internal/pkg/chat/persistence/repository/adapter"
	"chatwire/internal/pkg/chat/presentation/controller"
)

// Deps carries the shared infrastructure handed down from main.
// Cache and Queue may be nil; the corresponding features degrade quietly.
type Deps struct {
	Pool     *pgxpool.Pool
	Cache    cacheport.Cache
	Queue    queueport.Client
	Registry *realtime.Registry
	Router   *realtime.Router
	Config   *config.Config
	Logger   *slog.Logger
}

// RegisterRoutes registers chat endpoints under the given router group.
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, deps Deps) {
	directory := repoAdapter.NewPgDirectoryRepository(deps.Pool)
	store := repoAdapter.NewPgMessageStore(deps.Pool)

	sendUC := usecase.NewSendMessageUseCase(directory, store, deps.Router, deps.Queue, deps.Logger).
		WithTimeFormat(deps.Config.MessageTimeFormat).
		WithDeliveryReceipts(deps.Config.DeliveryReceipts)
	joinUC := usecase.NewJoinConversationUseCase(directory)
	readUC := usecase.NewMarkMessageReadUseCase(store)
	createChatUC := usecase.NewCreateChatUseCase(directory)
	createGroupUC := usecase.NewCreateGroupChatUseCase(directory, deps.Router, deps.Logger)
	contactsUC := usecase.NewListContactsUseCase(directory, store).
		WithTimeFormat(deps.Config.MessageTimeFormat)
	historyUC := usecase.NewGetMessageUseCase(directory, store)
	participantsUC := usecase.NewListParticipantsUseCase(directory)

	socketCtl := controller.NewChatSocketController(
		deps.Registry, deps.Router, directory, deps.Cache, sendUC, joinUC, deps.Logger)

	authed := g.Group("")
	authed.Use(controller.RequireUser(directory))

	// GET /api/v1/ws -> websocket endpoint (identity via ?uuid=)
	authed.GET("/ws", socketCtl.Handle())

	// Messages
	authed.POST("/messages", controller.NewSendMessageController(sendUC, deps.Config.MessageTimeFormat).Handle())
	authed.POST("/messages/read", controller.NewMarkMessageReadController(readUC).Handle())
	authed.GET("/messages/:chatId", controller.NewGetMessageController(historyUC, deps.Config.MessageTimeFormat).Handle())

	// Contacts and conversations
	authed.GET("/contacts", controller.NewListContactsController(contactsUC).Handle())
	authed.POST("/contacts", controller.NewCreateChatController(createChatUC).Handle())
	authed.POST("/group_chats", controller.NewCreateGroupChatController(createGroupUC).Handle())
	authed.GET("/chats/:chatId", controller.NewListParticipantsController(participantsUC).Handle())

	// Presence (no identity required to look someone up)
	g.GET("/users/:uuid/last_seen", controller.NewLastSeenController(deps.Cache, deps.Registry).Handle())
}
