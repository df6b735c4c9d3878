package di

import (
	"fmt"
	"net/http"
	"time"

	"rebang/catalog"
	"rebang/config"
	"rebang/gateway/feed_gateway"
	"rebang/gateway/image_fetch_gateway"
	"rebang/gateway/journal_gateway"
	"rebang/usecase/aggregate_usecase"
	"rebang/usecase/fetch_feed_usecase"
	"rebang/usecase/image_proxy_usecase"
	"rebang/usecase/items_usecase"
	"rebang/usecase/journal_usecase"
	"rebang/usecase/menu_usecase"
	"rebang/utils/rate_limiter"
	"rebang/utils/security"
)

const dnsQueryTimeout = 3 * time.Second

type ApplicationComponents struct {
	MenuUsecase       *menu_usecase.MenuUsecase
	FetchFeedUsecase  *fetch_feed_usecase.FetchFeedUsecase
	ItemsUsecase      *items_usecase.ItemsUsecase
	ImageProxyUsecase *image_proxy_usecase.ImageProxyUsecase
	JournalUsecase    *journal_usecase.JournalUsecase
}

// NewApplicationComponents wires the catalog, gateways and usecases.
func NewApplicationComponents(cfg *config.Config) (*ApplicationComponents, error) {
	menuUsecase, err := NewMenuUsecase(cfg)
	if err != nil {
		return nil, err
	}
	journalSources, err := catalog.JournalSources()
	if err != nil {
		return nil, fmt.Errorf("load journal sources: %w", err)
	}

	// Collaborator calls are bounded by the per-request context.
	feedGatewayImpl := feed_gateway.NewFeedGateway(&http.Client{})
	fetchFeedUsecase := fetch_feed_usecase.NewFetchFeedUsecase(feedGatewayImpl, menuUsecase, cfg.Feed.PublicOrigin, cfg.Feed.Timeout)
	aggregateUsecase := aggregate_usecase.NewAggregateUsecase(feedGatewayImpl, cfg.Feed.PublicOrigin)

	journalGatewayImpl := journal_gateway.NewJournalGateway(&http.Client{}, cfg.MediaProxy.UserAgent, cfg.Journal.FetchTimeout)
	journalUsecase := journal_usecase.NewJournalUsecase(
		journalGatewayImpl,
		journalSources,
		journal_usecase.NewProbeCache(cfg.Journal.ProbeCacheSize, cfg.Journal.ProbeTTL),
		cfg.Journal.Concurrency,
	)

	itemsUsecase := items_usecase.NewItemsUsecase(menuUsecase, fetchFeedUsecase, aggregateUsecase, journalUsecase, items_usecase.Timeouts{
		Default:    cfg.Feed.Timeout,
		Slow:       cfg.Feed.SlowTimeout,
		SlowTabKey: cfg.Feed.SlowTabKey,
	})

	var resolver security.Resolver = security.NewSystemResolver()
	if servers := cfg.MediaProxy.DNSServerList(); len(servers) > 0 {
		resolver = security.NewDNSResolver(servers, dnsQueryTimeout)
	}
	validator := security.NewTargetValidator(resolver)
	imageGatewayImpl := image_fetch_gateway.NewImageFetchGateway(
		security.NewSecureHTTPClient(validator, cfg.MediaProxy.Timeout),
		cfg.MediaProxy.UserAgent,
	)
	imageProxyUsecase := image_proxy_usecase.NewImageProxyUsecase(
		validator,
		imageGatewayImpl,
		rate_limiter.NewHostRateLimiter(cfg.MediaProxy.HostRPS, cfg.MediaProxy.HostBurst),
		cfg.MediaProxy.Timeout,
	)

	return &ApplicationComponents{
		MenuUsecase:       menuUsecase,
		FetchFeedUsecase:  fetchFeedUsecase,
		ItemsUsecase:      itemsUsecase,
		ImageProxyUsecase: imageProxyUsecase,
		JournalUsecase:    journalUsecase,
	}, nil
}

// NewMenuUsecase loads the embedded catalog and reveals the nodes unlocked
// by the configured credentials.
func NewMenuUsecase(cfg *config.Config) (*menu_usecase.MenuUsecase, error) {
	baseMenu, err := catalog.Menu()
	if err != nil {
		return nil, fmt.Errorf("load menu catalog: %w", err)
	}
	var tokens []string
	if cfg.HasGitHubToken() {
		tokens = append(tokens, menu_usecase.GitHubToken)
	}
	return menu_usecase.NewMenuUsecase(baseMenu, tokens...), nil
}
