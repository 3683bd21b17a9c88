package container

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // Import SQLite driver for whatsmeow
	"github.com/uptrace/bun"
	"go.mau.fi/whatsmeow/store/sqlstore"

	"wazmeow/internal/dispatch"
	domaindedup "wazmeow/internal/domain/dedup"
	"wazmeow/internal/domain/groupmeta"
	"wazmeow/internal/domain/session"
	"wazmeow/internal/domain/whatsapp"
	"wazmeow/internal/infra/authstore"
	"wazmeow/internal/infra/config"
	"wazmeow/internal/infra/database"
	"wazmeow/internal/infra/database/migrations"
	"wazmeow/internal/infra/dedup"
	"wazmeow/internal/infra/groupcache"
	infraLogger "wazmeow/internal/infra/logger"
	"wazmeow/internal/infra/ratebucket"
	"wazmeow/internal/infra/repository"
	"wazmeow/internal/infra/sessionmgr"
	"wazmeow/internal/infra/whats"
	"wazmeow/pkg/logger"
	"wazmeow/pkg/validator"
)

// Container holds all infrastructure dependencies
type Container struct {
	// Configuration
	Config *config.Config

	// Core infrastructure
	Logger    logger.Logger
	Validator validator.Validator
	DB        *bun.DB

	// Database components
	DBConnection database.Connection
	Migrator     *migrations.Migrator

	// Repositories
	SessionRepo session.Repository

	// WhatsApp components
	WhatsAppStore     *sqlstore.Container
	AuthStore         *authstore.Store
	ConnectionManager whatsapp.ConnectionManager
	SessionManager    whatsapp.SessionManager

	// Fleet-wide caches/coordinators
	GroupCache  *groupcache.Cache
	DedupLedger *dedup.Ledger
	RateBucket  *ratebucket.Bucket
	Dispatcher   *dispatch.Dispatcher
	Watcher      *dispatch.Watcher

	watcherCancel context.CancelFunc

	// Internal state
	isInitialized bool
}

// New creates a new infrastructure container
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	if err := container.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	return container, nil
}

// initialize sets up all infrastructure components
func (c *Container) initialize() error {
	if err := c.initializeLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	c.Logger.Info("initializing infrastructure container")

	if err := c.initializeValidator(); err != nil {
		return fmt.Errorf("failed to initialize validator: %w", err)
	}

	if err := c.initializeDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := c.initializeRepositories(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := c.initializeFleetCoordinators(); err != nil {
		return fmt.Errorf("failed to initialize fleet coordinators: %w", err)
	}

	if err := c.initializeWhatsApp(); err != nil {
		return fmt.Errorf("failed to initialize WhatsApp: %w", err)
	}

	if err := c.initializeDispatcher(); err != nil {
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}

	c.isInitialized = true
	c.Logger.Info("infrastructure container initialized successfully")

	return nil
}

// initializeLogger sets up the logger
func (c *Container) initializeLogger() error {
	c.Logger = infraLogger.New(&c.Config.Log)
	return nil
}

// initializeValidator sets up the validator
func (c *Container) initializeValidator() error {
	c.Validator = validator.New()
	return nil
}

// initializeDatabase sets up the database connection and migrations
func (c *Container) initializeDatabase() error {
	dbConn, err := database.New(&c.Config.Database, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	c.DBConnection = dbConn
	c.DB = dbConn.GetDB()

	c.Migrator = migrations.NewMigrator(c.DB, c.Logger)

	if c.Config.Database.AutoMigrate {
		ctx := context.Background()
		if err := c.Migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	return nil
}

// initializeRepositories sets up all repositories
func (c *Container) initializeRepositories() error {
	c.SessionRepo = repository.NewSessionRepository(c.DB, c.Logger)

	c.Logger.Info("repositories initialized")
	return nil
}

// initializeFleetCoordinators sets up the in-process fleet-wide caches and
// coordinators that sit alongside (not inside) any one session's socket:
// the group-metadata cache, the cross-session dedup ledger, and the
// process-wide outbound rate bucket. Message stores are per-session and
// built by the ConnectionManager alongside each socket.
func (c *Container) initializeFleetCoordinators() error {
	c.GroupCache = groupcache.New()
	c.DedupLedger = dedup.New()
	c.RateBucket = ratebucket.New()

	c.Logger.Info("fleet coordinators initialized")
	return nil
}

// initializeWhatsApp sets up the AuthStore, whatsmeow's own sqlstore, the
// ConnectionManager and the fleet-wide SessionManager.
func (c *Container) initializeWhatsApp() error {
	if c.Config.Runtime.StorageMode == "mongodb" && c.Config.Runtime.MongoDBURI != "" {
		authStore, err := authstore.New(authstore.Config{
			BaseDir: c.authStoreBaseDir(),
			Valkey: authstore.ValkeyConfig{
				Address:   c.Config.Runtime.MongoDBURI,
				KeyPrefix: "wazmeow:auth:",
			},
		})
		if err != nil {
			return fmt.Errorf("failed to create auth store: %w", err)
		}
		c.AuthStore = authStore
	} else {
		c.AuthStore = authstore.NewFileOnly(c.authStoreBaseDir())
	}

	dbURL := c.Config.Database.URL
	dbDriver := c.Config.Database.Driver

	switch dbDriver {
	case "sqlite", "sqlite3":
		dbDriver = "sqlite3"
		if dbURL == "./data/wazmeow.db" {
			dbURL = "./data/wazmeow.db?_foreign_keys=on"
		} else if !strings.Contains(dbURL, ":memory:") && !strings.Contains(dbURL, "mode=memory") && !strings.Contains(dbURL, "_foreign_keys") {
			if strings.Contains(dbURL, "?") {
				dbURL += "&_foreign_keys=on"
			} else {
				dbURL += "?_foreign_keys=on"
			}
		}
	case "postgres", "postgresql":
		dbDriver = "postgres"
	default:
		return fmt.Errorf("unsupported database driver for WhatsApp store: %s", dbDriver)
	}

	waLogger := whats.NewLoggerAdapter(c.Logger, "WhatsApp")

	whatsappStore, err := sqlstore.New(context.Background(), dbDriver, dbURL, waLogger)
	if err != nil {
		return fmt.Errorf("failed to create WhatsApp store: %w", err)
	}

	if err := whatsappStore.Upgrade(context.Background()); err != nil {
		return fmt.Errorf("failed to upgrade WhatsApp store: %w", err)
	}

	c.WhatsAppStore = whatsappStore
	c.ConnectionManager = whats.NewConnectionManager(whatsappStore, c.AuthStore, c.RateBucket, c.GroupCache, c.SessionRepo, c.Logger)
	c.SessionManager = sessionmgr.New(c.ConnectionManager, c.SessionRepo, c.AuthStore, sessionmgr.Config{
		ChannelJID:    c.Config.Runtime.ChannelJID,
		Enable515Flow: c.Config.Runtime.Enable515Flow,
	}, c.Logger)

	c.Logger.Info("WhatsApp components initialized")
	return nil
}

// authStoreBaseDir resolves the primary-tier directory for the AuthStore,
// kept under the same data root as the sqlite file.
func (c *Container) authStoreBaseDir() string {
	return "./data/auth"
}

// dispatcherSender adapts whatsapp.SessionManager onto dispatch.Sender by
// looking the socket up per-send rather than holding one permanently —
// sessions can be torn down and recreated between dispatches.
type dispatcherSender struct {
	sessionMgr whatsapp.SessionManager
}

func (s dispatcherSender) SendText(ctx context.Context, sessionID, chatID, text string) error {
	id, err := session.SessionIDFromString(sessionID)
	if err != nil {
		return fmt.Errorf("dispatcher sender: %w", err)
	}
	socket, ok := s.sessionMgr.GetSession(id)
	if !ok {
		return whatsapp.ErrClientNotFound
	}
	_, err = socket.SendText(ctx, chatID, text, nil)
	return err
}

// groupPermissionChecker implements dispatch.PermissionChecker: public
// commands pass, everything stronger needs the creator, and inside groups
// a group admin (resolved through the shared GroupCache) may run
// groupmenu/admin commands.
type groupPermissionChecker struct {
	sessionMgr whatsapp.SessionManager
	groups     *groupcache.Cache
}

func (p groupPermissionChecker) Check(ctx context.Context, msgCtx dispatch.MessageContext, category dispatch.Category, perm dispatch.RequiredPermission) (dispatch.Verdict, error) {
	if category == dispatch.CategoryPublic && perm == dispatch.PermissionNone {
		return dispatch.Verdict{Allowed: true}, nil
	}
	if msgCtx.IsCreator {
		return dispatch.Verdict{Allowed: true}, nil
	}
	if perm == dispatch.PermissionOwner || category == dispatch.CategoryOwner {
		return dispatch.Verdict{Allowed: false, Silent: true}, nil
	}

	if msgCtx.IsGroup {
		if admin, err := p.isGroupAdmin(ctx, msgCtx); err == nil && admin {
			return dispatch.Verdict{Allowed: true}, nil
		}
		if category == dispatch.CategoryGroupMenu || category == dispatch.CategoryGameMenu {
			return dispatch.Verdict{Allowed: false, DenyReason: "only group admins can use this command"}, nil
		}
		return dispatch.Verdict{Allowed: false, Silent: true}, nil
	}

	if category == dispatch.CategoryVIP || perm == dispatch.PermissionVIP {
		return dispatch.Verdict{Allowed: false, DenyReason: "this command is available to VIP accounts only"}, nil
	}
	return dispatch.Verdict{Allowed: false, Silent: true}, nil
}

func (p groupPermissionChecker) isGroupAdmin(ctx context.Context, msgCtx dispatch.MessageContext) (bool, error) {
	id, err := session.SessionIDFromString(msgCtx.SessionID)
	if err != nil {
		return false, err
	}
	sock, ok := p.sessionMgr.GetSession(id)
	if !ok {
		return false, whatsapp.ErrClientNotFound
	}
	meta, err := p.groups.Get(ctx, sock, msgCtx.ChatID, false)
	if err != nil || meta == nil {
		return false, err
	}
	for _, part := range meta.Participants {
		if part.ID == msgCtx.SenderID || part.JID == msgCtx.SenderID || part.PhoneNumber == msgCtx.SenderID {
			return part.Admin != groupmeta.RoleNone, nil
		}
	}
	return false, nil
}

// initializeDispatcher wires the command-dispatch pipeline. The bot-mode
// and group-only gates have no persisted backing concept in this repo
// yet, so they run as the package's documented nil-stub defaults (no
// self-mode/group-only filtering) until a concrete settings store is
// introduced — see DESIGN.md.
func (c *Container) initializeDispatcher() error {
	var ledger domaindedup.Ledger = c.DedupLedger
	perm := groupPermissionChecker{sessionMgr: c.SessionManager, groups: c.GroupCache}

	c.Dispatcher = dispatch.New(ledger, nil, nil, perm, dispatcherSender{sessionMgr: c.SessionManager}, c.Logger)

	if mgr, ok := c.SessionManager.(*sessionmgr.Manager); ok {
		mgr.SetInboundHandler(c.routeInbound)
	}

	if dir := c.Config.Runtime.PluginManifestDir; dir != "" && c.Config.Runtime.PluginAutoReload {
		c.Watcher = dispatch.NewWatcher(c.Dispatcher, dir, c.Logger)

		ctx, cancel := context.WithCancel(context.Background())
		c.watcherCancel = cancel
		go func() {
			if err := c.Watcher.Run(ctx); err != nil {
				c.Logger.ErrorWithError("plugin manifest watcher stopped", err, nil)
			}
		}()
	}

	c.Logger.Info("dispatcher initialized")
	return nil
}

// commandPrefix addresses a message to the command pipeline. Messages
// without it still go through the anti-plugin scan.
const commandPrefix = "."

// routeInbound fans each inbound message into the anti-plugin scan and,
// when prefix-addressed, the command pipeline.
func (c *Container) routeInbound(sessionID session.SessionID, upsert whatsapp.MessagesUpsert) {
	ctx := context.Background()
	for _, msg := range upsert.Messages {
		if msg == nil || msg.IsFromMe {
			continue
		}

		msgCtx := dispatch.MessageContext{
			ChatID:    msg.ChatID,
			SenderID:  msg.From,
			MessageID: msg.ID,
			IsGroup:   msg.IsGroup,
			SessionID: sessionID.String(),
			RawText:   msg.Body,
		}

		c.Dispatcher.ScanAntiPlugins(ctx, msgCtx)

		if !strings.HasPrefix(msg.Body, commandPrefix) {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(msg.Body, commandPrefix))
		if len(fields) == 0 {
			continue
		}
		msgCtx.Command = strings.ToLower(fields[0])
		msgCtx.Args = fields[1:]

		if err := c.Dispatcher.Dispatch(ctx, msgCtx); err != nil {
			c.Logger.WarnWithFields("dispatch failed", logger.Fields{
				"session_id": sessionID.String(),
				"command":    msgCtx.Command,
				"error":      err.Error(),
			})
		}
	}
}

// Close gracefully shuts down all infrastructure components
func (c *Container) Close() error {
	if !c.isInitialized {
		return nil
	}

	c.Logger.Info("shutting down infrastructure container")

	var errs []error

	if c.SessionManager != nil {
		ctx := context.Background()
		if err := c.SessionManager.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down session manager: %w", err))
		}
	}

	if c.watcherCancel != nil {
		c.watcherCancel()
	}

	if c.AuthStore != nil {
		c.AuthStore.Close()
	}

	if c.WhatsAppStore != nil {
		if err := c.WhatsAppStore.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close WhatsApp store: %w", err))
		}
	}

	if c.DBConnection != nil {
		if err := c.DBConnection.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}

	if len(errs) > 0 {
		for _, err := range errs {
			c.Logger.ErrorWithError("error during container shutdown", err, nil)
		}
		return fmt.Errorf("multiple errors during shutdown: %v", errs)
	}

	c.Logger.Info("infrastructure container shut down successfully")
	return nil
}

// Health checks the health of all infrastructure components
func (c *Container) Health() error {
	if !c.isInitialized {
		return fmt.Errorf("container not initialized")
	}

	if err := c.DBConnection.Health(); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// IsInitialized returns true if the container is initialized
func (c *Container) IsInitialized() bool {
	return c.isInitialized
}

// GetDatabaseStats returns database connection statistics
func (c *Container) GetDatabaseStats() interface{} {
	if c.DB == nil {
		return sql.DBStats{}
	}
	return c.DB.DB.Stats()
}

// GetWhatsAppStats returns a fleet-wide connection snapshot
func (c *Container) GetWhatsAppStats() whatsapp.Stats {
	if c.SessionManager == nil {
		return whatsapp.Stats{}
	}
	return c.SessionManager.GetStats()
}

// ResetDatabase drops and recreates all database tables
func (c *Container) ResetDatabase() error {
	if c.Migrator == nil {
		return fmt.Errorf("migrator not initialized")
	}

	c.Logger.Warn("resetting database")
	ctx := context.Background()
	return c.Migrator.Reset(ctx)
}

// MigrateDatabase runs database migrations
func (c *Container) MigrateDatabase() error {
	if c.Migrator == nil {
		return fmt.Errorf("migrator not initialized")
	}

	c.Logger.Info("running database migrations")
	ctx := context.Background()
	return c.Migrator.Migrate(ctx)
}
