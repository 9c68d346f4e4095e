package cmd

import (
	"context"
	"fmt"
	"strings"

	"cloud-manager/core/cloud"
	"cloud-manager/core/config"
	"cloud-manager/core/journal"
	"cloud-manager/core/logger"
	"cloud-manager/core/reconcile"
	"cloud-manager/core/storage"
	"cloud-manager/feature/buckets"
	"cloud-manager/feature/iam"
	"cloud-manager/feature/tables"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"go.uber.org/zap"
)

// Resource types accepted on the command line.
const (
	typeRoles   = "roles"
	typeGroups  = "groups"
	typeBuckets = "buckets"
	typeTables  = "tables"
)

var resourceTypes = []string{typeRoles, typeGroups, typeBuckets, typeTables}

// selectTypes validates the requested resource types. No argument selects
// every type.
func selectTypes(args []string, allowed []string) ([]string, error) {
	if len(args) == 0 {
		return allowed, nil
	}
	seen := make(map[string]bool, len(args))
	var out []string
	for _, a := range args {
		a = strings.TrimSpace(a)
		if !contains(allowed, a) {
			return nil, fmt.Errorf("unknown resource type %q (expected one of %s)", a, strings.Join(allowed, ", "))
		}
		if !seen[a] {
			seen[a] = true
			out = append(out, a)
		}
	}
	return out, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// runtime holds the configuration, the logger and the lazily created
// provider clients shared by the commands.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger

	awsCfg *aws.Config
	store  storage.Client
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	exitCodes = cfg.Exit

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(l)
	runLogger = l

	return &runtime{cfg: cfg, logger: l}, nil
}

// awsConfig loads the SDK configuration once and logs the identity in use.
func (r *runtime) awsConfig(ctx context.Context) (aws.Config, error) {
	if r.awsCfg != nil {
		return *r.awsCfg, nil
	}

	cfg, err := cloud.Load(ctx, r.cfg.AWS)
	if err != nil {
		return aws.Config{}, err
	}
	id, err := cloud.CallerIdentity(ctx, sts.NewFromConfig(cfg))
	if err != nil {
		return aws.Config{}, err
	}
	r.logger.Info("Using AWS identity",
		zap.String("account", id.Account),
		zap.String("arn", id.ARN),
		zap.String("region", cfg.Region),
	)

	r.awsCfg = &cfg
	return cfg, nil
}

func (r *runtime) iamClient(ctx context.Context) (iam.Client, error) {
	cfg, err := r.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	return awsiam.NewFromConfig(cfg), nil
}

func (r *runtime) storageClient() (storage.Client, error) {
	if r.store != nil {
		return r.store, nil
	}
	client, err := storage.NewClient(r.cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to storage: %w", err)
	}
	r.store = client
	return client, nil
}

// openJournal connects the sync journal when enabled. A nil journal means
// journaling is off.
func (r *runtime) openJournal(ctx context.Context) (*journal.Journal, error) {
	if !r.cfg.Database.Enabled {
		return nil, nil
	}
	db, err := journal.Connect(r.cfg.Database)
	if err != nil {
		return nil, err
	}
	j := journal.New(db)
	if err := j.Migrate(ctx); err != nil {
		return nil, err
	}
	r.logger.Info("Sync journal enabled", zap.String("database", r.cfg.Database.Name))
	return j, nil
}

// targets builds one reconciliation target per resource type.
func (r *runtime) targets(ctx context.Context, types []string, deps reconcile.Deps) ([]reconcile.Target, error) {
	opts := reconcile.Options{
		IncludeUnmanaged: r.cfg.Sync.IncludeUnmanaged,
		CreateEnabled:    r.cfg.Sync.Create,
	}
	root := r.cfg.Catalog.Root
	workers := r.cfg.Sync.Workers

	out := make([]reconcile.Target, 0, len(types))
	for _, t := range types {
		switch t {
		case typeRoles, typeGroups:
			client, err := r.iamClient(ctx)
			if err != nil {
				return nil, err
			}
			if t == typeRoles {
				out = append(out, reconcile.NewTarget[iam.Role, iam.Role](iam.NewRoles(client, root, workers, r.logger), opts, deps))
			} else {
				out = append(out, reconcile.NewTarget[iam.Group, iam.Group](iam.NewGroups(client, root, workers, r.logger), opts, deps))
			}
		case typeTables:
			cfg, err := r.awsConfig(ctx)
			if err != nil {
				return nil, err
			}
			m := tables.NewManager(dynamodb.NewFromConfig(cfg), root, workers, r.logger)
			out = append(out, reconcile.NewTarget[tables.Table, tables.Table](m, opts, deps))
		case typeBuckets:
			client, err := r.storageClient()
			if err != nil {
				return nil, err
			}
			region := r.cfg.Storage.Region
			if region == "" {
				region = r.cfg.AWS.Region
			}
			m := buckets.NewManager(client, root, region, workers, r.logger)
			out = append(out, reconcile.NewTarget[buckets.Bucket, buckets.Bucket](m, opts, deps))
		}
	}
	return out, nil
}
