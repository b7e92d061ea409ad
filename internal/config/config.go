package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/the-block/bridge/internal/core/application"
	"github.com/the-block/bridge/internal/core/domain"
	"github.com/the-block/bridge/internal/core/ports"
	"github.com/the-block/bridge/internal/infrastructure/db"
	"github.com/the-block/bridge/internal/infrastructure/governance"
	inmemorylivestore "github.com/the-block/bridge/internal/infrastructure/live-store/inmemory"
	timescheduler "github.com/the-block/bridge/internal/infrastructure/scheduler/gocron"
	"github.com/the-block/bridge/internal/infrastructure/verifier"
)

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return fmt.Sprintf("%v", types)
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}

var (
	supportedDbs = supportedType{
		"badger": {},
	}
	supportedSchedulers = supportedType{
		"gocron": {},
	}
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	DbType        string
	DbDir         string
	SchedulerType string

	RoundInterval int64

	BatchSize         int
	FairnessWindow    time.Duration
	MaxTrustHops      int
	MinTrustRebalance uint64

	MinBond        uint64
	DutyReward     uint64
	FailureSlash   uint64
	ChallengeSlash uint64
	DutyWindowSecs int64

	repo      ports.RepoManager
	ledger    *application.LedgerService
	tracker   *application.DutyTracker
	queue     *application.WithdrawalQueue
	router    *application.LiquidityRouter
	scheduler ports.SchedulerService
	escrow    *inmemorylivestore.EscrowStore
	trust     *inmemorylivestore.TrustLedger
	orderBook *inmemorylivestore.OrderBook
	approver  *governance.ClaimApprover
	policy    *governance.ChallengePolicy
}

func (c *Config) String() string {
	json, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	Datadir           = "DATADIR"
	Port              = "PORT"
	LogLevel          = "LOG_LEVEL"
	DbType            = "DB_TYPE"
	SchedulerType     = "SCHEDULER_TYPE"
	RoundInterval     = "ROUND_INTERVAL"
	BatchSize         = "BATCH_SIZE"
	FairnessWindow    = "FAIRNESS_WINDOW"
	MaxTrustHops      = "MAX_TRUST_HOPS"
	MinTrustRebalance = "MIN_TRUST_REBALANCE"
	MinBond           = "MIN_BOND"
	DutyReward        = "DUTY_REWARD"
	FailureSlash      = "FAILURE_SLASH"
	ChallengeSlash    = "CHALLENGE_SLASH"
	DutyWindowSecs    = "DUTY_WINDOW_SECS"

	defaultDatadir       = appDataDir("bridged")
	DefaultPort          = 7080
	defaultLogLevel      = 4
	defaultDbType        = "badger"
	defaultSchedulerType = "gocron"
	defaultRoundInterval = 30
)

func LoadConfig() (*Config, error) {
	viper.SetEnvPrefix("BRIDGE")
	viper.AutomaticEnv()

	routerDefaults := domain.DefaultRouterConfig()
	incentiveDefaults := domain.DefaultIncentiveParams()

	viper.SetDefault(Datadir, defaultDatadir)
	viper.SetDefault(Port, DefaultPort)
	viper.SetDefault(LogLevel, defaultLogLevel)
	viper.SetDefault(DbType, defaultDbType)
	viper.SetDefault(SchedulerType, defaultSchedulerType)
	viper.SetDefault(RoundInterval, defaultRoundInterval)
	viper.SetDefault(BatchSize, routerDefaults.BatchSize)
	viper.SetDefault(FairnessWindow, routerDefaults.FairnessWindow)
	viper.SetDefault(MaxTrustHops, routerDefaults.MaxTrustHops)
	viper.SetDefault(MinTrustRebalance, routerDefaults.MinTrustRebalance)
	viper.SetDefault(MinBond, incentiveDefaults.MinBond)
	viper.SetDefault(DutyReward, incentiveDefaults.DutyReward)
	viper.SetDefault(FailureSlash, incentiveDefaults.FailureSlash)
	viper.SetDefault(ChallengeSlash, incentiveDefaults.ChallengeSlash)
	viper.SetDefault(DutyWindowSecs, incentiveDefaults.DutyWindowSecs)

	if err := initDatadir(); err != nil {
		return nil, fmt.Errorf("error while creating datadir: %s", err)
	}

	return &Config{
		Datadir:           viper.GetString(Datadir),
		Port:              viper.GetUint32(Port),
		LogLevel:          viper.GetInt(LogLevel),
		DbType:            viper.GetString(DbType),
		DbDir:             filepath.Join(viper.GetString(Datadir), "db"),
		SchedulerType:     viper.GetString(SchedulerType),
		RoundInterval:     viper.GetInt64(RoundInterval),
		BatchSize:         viper.GetInt(BatchSize),
		FairnessWindow:    viper.GetDuration(FairnessWindow),
		MaxTrustHops:      viper.GetInt(MaxTrustHops),
		MinTrustRebalance: viper.GetUint64(MinTrustRebalance),
		MinBond:           viper.GetUint64(MinBond),
		DutyReward:        viper.GetUint64(DutyReward),
		FailureSlash:      viper.GetUint64(FailureSlash),
		ChallengeSlash:    viper.GetUint64(ChallengeSlash),
		DutyWindowSecs:    viper.GetInt64(DutyWindowSecs),
	}, nil
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf("scheduler type not supported, please select one of: %s", supportedSchedulers)
	}
	if c.RoundInterval < 2 {
		return fmt.Errorf("invalid round interval, must be at least 2 seconds")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("invalid batch size, must be positive")
	}
	if c.MaxTrustHops <= 0 {
		return fmt.Errorf("invalid max trust hops, must be positive")
	}
	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	c.appServices()
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	return c.repo
}

func (c *Config) WithdrawalQueue() *application.WithdrawalQueue {
	return c.queue
}

func (c *Config) DutyTracker() *application.DutyTracker {
	return c.tracker
}

func (c *Config) LiquidityRouter() *application.LiquidityRouter {
	return c.router
}

func (c *Config) SchedulerService() ports.SchedulerService {
	return c.scheduler
}

func (c *Config) EscrowStore() *inmemorylivestore.EscrowStore {
	return c.escrow
}

func (c *Config) TrustLedger() *inmemorylivestore.TrustLedger {
	return c.trust
}

func (c *Config) OrderBook() *inmemorylivestore.OrderBook {
	return c.orderBook
}

func (c *Config) ClaimApprover() *governance.ClaimApprover {
	return c.approver
}

func (c *Config) ChallengePolicy() *governance.ChallengePolicy {
	return c.policy
}

func (c *Config) repoManager() error {
	logger := log.New()

	var dataStoreConfig []interface{}
	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		DataStoreType:   c.DbType,
		DataStoreConfig: dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) schedulerService() error {
	switch c.SchedulerType {
	case "gocron":
		c.scheduler = timescheduler.NewScheduler()
	default:
		return fmt.Errorf("unknown scheduler type")
	}
	return nil
}

func (c *Config) appServices() {
	c.approver = governance.NewClaimApprover()
	c.policy = governance.NewChallengePolicy()
	c.escrow = inmemorylivestore.NewEscrowStore()
	c.trust = inmemorylivestore.NewTrustLedger()
	c.orderBook = inmemorylivestore.NewOrderBook()

	c.ledger = application.NewLedgerService(c.repo.Relayers())
	c.tracker = application.NewDutyTracker(
		c.repo.Duties(), c.repo.Audit(), c.ledger, c.policy,
		domain.IncentiveParams{
			MinBond:        c.MinBond,
			DutyReward:     c.DutyReward,
			FailureSlash:   c.FailureSlash,
			ChallengeSlash: c.ChallengeSlash,
			DutyWindowSecs: c.DutyWindowSecs,
		},
	)
	c.queue = application.NewWithdrawalQueue(
		c.repo, c.ledger, c.tracker, verifier.NewHeaderBoundVerifier(), c.approver,
	)
	c.router = application.NewLiquidityRouter(domain.RouterConfig{
		BatchSize:         c.BatchSize,
		FairnessWindow:    c.FairnessWindow,
		MaxTrustHops:      c.MaxTrustHops,
		MinTrustRebalance: c.MinTrustRebalance,
	})
}

func initDatadir() error {
	datadir := viper.GetString(Datadir)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}
