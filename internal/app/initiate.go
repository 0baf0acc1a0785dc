package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/shandysiswandi/diarium/internal/pkg/clock"
	"github.com/shandysiswandi/diarium/internal/pkg/config"
	"github.com/shandysiswandi/diarium/internal/pkg/goroutine"
	"github.com/shandysiswandi/diarium/internal/pkg/hash"
	"github.com/shandysiswandi/diarium/internal/pkg/idempotency"
	"github.com/shandysiswandi/diarium/internal/pkg/instrument"
	"github.com/shandysiswandi/diarium/internal/pkg/jwt"
	"github.com/shandysiswandi/diarium/internal/pkg/mail"
	"github.com/shandysiswandi/diarium/internal/pkg/messaging"
	"github.com/shandysiswandi/diarium/internal/pkg/router"
	"github.com/shandysiswandi/diarium/internal/pkg/storage"
	"github.com/shandysiswandi/diarium/internal/pkg/uid"
	"github.com/shandysiswandi/diarium/internal/pkg/validator"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// fatal logs the failure and exits. Init runs before the server accepts
// traffic, so there is nothing to unwind.
func fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		fatal("failed to init config", "error", err)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	conf := a.config
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          true,
		ServiceName:      conf.GetString("instrument.service_name"),
		ServiceVersion:   conf.GetString("instrument.service_version"),
		Environment:      conf.GetString("instrument.env"),
		OTLPEndpoint:     conf.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       conf.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: conf.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  conf.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       conf.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		fatal("failed to init instrumentation", "error", err)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	conf := a.config
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(conf.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(conf.GetString("hash.hmac.secret"))

	switch conf.GetString("hash.password.algo") {
	case "argon2id":
		a.password = hash.NewArgon2id(conf.GetString("hash.password.pepper"))
	default:
		a.password = hash.NewBcrypt(conf.GetInt("hash.password.bcrypt_cost"), conf.GetString("hash.password.pepper"))
	}

	v10, err := validator.NewV10Validator()
	if err != nil {
		fatal("failed to init validator", "error", err)
	}
	a.validator = v10

	snow, err := uid.NewSnowflake()
	if err != nil {
		fatal("failed to init snowflake id generator", "error", err)
	}
	a.uid = snow

	objID, err := uid.NewObjectIDGenerator()
	if err != nil {
		fatal("failed to init object id generator", "error", err)
	}
	a.oid = objID
}

func (a *App) initJWT() {
	conf := a.config
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:     []byte(conf.GetString("jwt.secret")),
		Issuer:     conf.GetString("jwt.issuer"),
		Audiences:  conf.GetArray("jwt.audiences"),
		TTLMinutes: conf.GetMinute("jwt.ttl_minutes"),
		Clock:      a.clock,
		UUID:       a.uuid,
	})
	if err != nil {
		fatal("failed to init jwt", "error", err)
	}
	a.jwt = defaultJWT
}

func (a *App) initDatabase() {
	conf := a.config
	poolCfg, err := pgxpool.ParseConfig(conf.GetString("database.url"))
	if err != nil {
		fatal("failed to parse database url", "error", err)
	}

	poolCfg.MaxConns = conf.GetInt32("database.pool.max_conns")
	poolCfg.MinConns = conf.GetInt32("database.pool.min_conns")
	poolCfg.MaxConnLifetime = conf.GetSecond("database.pool.max_conn_lifetime_seconds")
	poolCfg.MaxConnIdleTime = conf.GetSecond("database.pool.max_conn_idle_seconds")
	poolCfg.HealthCheckPeriod = conf.GetSecond("database.pool.health_check_period_seconds")

	pool, err := pgxpool.NewWithConfig(a.ctx, poolCfg)
	if err != nil {
		fatal("failed to create database pool", "error", err)
	}

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		fatal("failed to ping database", "error", err)
	}

	a.dbConn = pool
}

func (a *App) initCache() {
	conf := a.config
	redisOpt, err := redis.ParseURL(conf.GetString("redis.url"))
	if err != nil {
		fatal("failed to parse redis url", "error", err)
	}

	rdb := redis.NewClient(redisOpt)

	pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		fatal("failed to ping redis", "error", err)
	}

	a.cacheConn = rdb
	a.idemp = idempotency.New(a.cacheConn)
}

func (a *App) initMail() {
	conf := a.config
	smtp, err := mail.NewSMTP(mail.SMTPConfig{
		Host:     conf.GetString("mail.host"),
		Port:     conf.GetInt("mail.port"),
		Username: conf.GetString("mail.username"),
		Password: conf.GetString("mail.password"),
		From:     conf.GetString("mail.from"),
	})
	if err != nil {
		fatal("failed to init mail", "error", err)
	}

	a.mail = smtp
}

// gcsClientFromConfig builds a GCS client when any of the optional client
// settings is present. Returns nil when the adapter should construct its
// own client from ambient credentials.
func (a *App) gcsClientFromConfig() *gcs.Client {
	conf := a.config
	opts := []option.ClientOption{}
	if conf.GetBool("storage.gcs.without_auth") {
		opts = append(opts, option.WithoutAuthentication())
	}
	if v := strings.TrimSpace(conf.GetString("storage.gcs.credentials_file")); v != "" {
		// #nosec G304 -- path is from trusted config file.
		credsJSON, err := os.ReadFile(v)
		if err != nil {
			fatal("failed to read gcs credentials file", "error", err)
		}
		creds, err := google.CredentialsFromJSON(a.ctx, credsJSON, gcs.ScopeFullControl)
		if err != nil {
			fatal("failed to parse gcs credentials file", "error", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	if v := conf.GetBinary("storage.gcs.credentials_json"); len(v) > 0 {
		creds, err := google.CredentialsFromJSON(a.ctx, v, gcs.ScopeFullControl)
		if err != nil {
			fatal("failed to parse gcs credentials json", "error", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}
	if v := strings.TrimSpace(conf.GetString("storage.gcs.endpoint")); v != "" {
		opts = append(opts, option.WithEndpoint(v))
	}
	if v := strings.TrimSpace(conf.GetString("storage.gcs.user_agent")); v != "" {
		opts = append(opts, option.WithUserAgent(v))
	}
	if len(opts) == 0 {
		return nil
	}

	client, err := gcs.NewClient(a.ctx, opts...)
	if err != nil {
		fatal("failed to init gcs client", "error", err)
	}
	return client
}

func (a *App) initStorage() {
	conf := a.config
	driver := strings.TrimSpace(conf.GetString("storage.driver"))

	var gcsClient *gcs.Client
	if driver == storage.DriverGCS {
		gcsClient = a.gcsClientFromConfig()
	}

	stg, err := storage.NewFromDriver(a.ctx, driver, storage.FactoryOptions{
		S3: storage.S3Options{
			Region:       strings.TrimSpace(conf.GetString("storage.s3.region")),
			Endpoint:     strings.TrimSpace(conf.GetString("storage.s3.endpoint")),
			AccessKey:    strings.TrimSpace(conf.GetString("storage.s3.access_key")),
			SecretKey:    strings.TrimSpace(conf.GetString("storage.s3.secret_key")),
			SessionToken: strings.TrimSpace(conf.GetString("storage.s3.session_token")),
			UsePathStyle: conf.GetBool("storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{
			Client:         gcsClient,
			GoogleAccessID: strings.TrimSpace(conf.GetString("storage.gcs.signer_access_id")),
			PrivateKey:     conf.GetBinary("storage.gcs.signer_private_key"),
		},
		MinIO: storage.MinIOOptions{
			Region:       strings.TrimSpace(conf.GetString("storage.minio.region")),
			Endpoint:     strings.TrimSpace(conf.GetString("storage.minio.endpoint")),
			AccessKey:    strings.TrimSpace(conf.GetString("storage.minio.access_key")),
			SecretKey:    strings.TrimSpace(conf.GetString("storage.minio.secret_key")),
			SessionToken: strings.TrimSpace(conf.GetString("storage.minio.session_token")),
			UseSSL:       conf.GetBool("storage.minio.use_ssl"),
		},
	})
	if err != nil {
		fatal("failed to init storage", "error", err, "driver", driver)
	}

	a.storage = stg
}

func (a *App) nsqConfig(prefix string) *nsq.Config {
	conf := a.config
	cfg := nsq.NewConfig()
	cfg.MaxInFlight = conf.GetInt(prefix + ".max_in_flight")
	cfg.DialTimeout = conf.GetSecond(prefix + ".dial_timeout_seconds")
	cfg.ReadTimeout = conf.GetSecond(prefix + ".read_timeout_seconds")
	cfg.WriteTimeout = conf.GetSecond(prefix + ".write_timeout_seconds")
	return cfg
}

func (a *App) initMessaging() {
	conf := a.config
	consumerCfg := a.nsqConfig("messaging.nsq.consumer_config")
	consumerCfg.MaxAttempts = conf.GetUint16("messaging.nsq.consumer_config.max_attempts")
	consumerCfg.LookupdPollInterval = conf.GetSecond("messaging.nsq.consumer_config.lookupd_poll_interval_seconds")
	consumerCfg.DefaultRequeueDelay = conf.GetSecond("messaging.nsq.consumer_config.default_requeue_delay_seconds")
	consumerCfg.MaxRequeueDelay = conf.GetSecond("messaging.nsq.consumer_config.max_requeue_delay_seconds")

	driver := conf.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr:         conf.GetString("messaging.nsq.producer_addr"),
			ConsumerNSQDAddrs:    conf.GetArray("messaging.nsq.consumer_nsqd_addrs"),
			ConsumerLookupdAddrs: conf.GetArray("messaging.nsq.consumer_lookupd_addrs"),
			ProducerConfig:       a.nsqConfig("messaging.nsq.producer_config"),
			ConsumerConfig:       consumerCfg,
		},
		NATS: messaging.NATSConfig{
			URL: conf.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(conf.GetString("messaging.nats.name")),
				nats.MaxReconnects(conf.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(conf.GetSecond("messaging.nats.timeout_seconds")),
				nats.ReconnectWait(conf.GetSecond("messaging.nats.reconnect_wait_seconds")),
				nats.PingInterval(conf.GetSecond("messaging.nats.ping_interval_seconds")),
				nats.MaxPingsOutstanding(conf.GetInt("messaging.nats.max_pings_outstanding")),
				nats.RetryOnFailedConnect(conf.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
	})
	if err != nil {
		fatal("failed to init messaging", "error", err, "driver", driver)
	}

	a.messaging = client
}

func (a *App) initHTTPServer() {
	conf := a.config
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: conf.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              conf.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       conf.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: conf.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      conf.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       conf.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

// initClosers registers shutdown hooks in the order they should run.
func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{name: "Instrument", fn: a.ins.Shutdown},
		{name: "Messaging", fn: func(context.Context) error { return a.messaging.Close() }},
		{name: "Mail", fn: func(context.Context) error { return a.mail.Close() }},
		{name: "Redis", fn: func(context.Context) error { return a.cacheConn.Close() }},
		{name: "Database", fn: func(context.Context) error { a.dbConn.Close(); return nil }},
		{name: "Storage", fn: func(context.Context) error { return a.storage.Close() }},
		{name: "Config", fn: func(context.Context) error { return a.config.Close() }},
	}
}
