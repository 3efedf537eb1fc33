package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"bridge.db"`

	Stripe  Stripe  `envPrefix:"STRIPE_"`
	Shopify Shopify `envPrefix:"SHOPIFY_"`
	Sync    Sync    `envPrefix:"SYNC_"`
}

type Stripe struct {
	SecretKey      string `env:"SECRET_KEY"`
	PublishableKey string `env:"PUBLISHABLE_KEY"`
	WebhookSecret  string `env:"WEBHOOK_SECRET"`
	YearlyPriceID  string `env:"YEARLY_PRICE_ID"`
	MonthlyPriceID string `env:"MONTHLY_PRICE_ID"`
	TrialDays      int64  `env:"TRIAL_DAYS" envDefault:"0"`
	SuccessURL     string `env:"SUCCESS_URL"`
	CancelURL      string `env:"CANCEL_URL"`
}

type Shopify struct {
	ShopDomain  string `env:"SHOP_DOMAIN"`
	AccessToken string `env:"ACCESS_TOKEN"`
	APIVersion  string `env:"API_VERSION" envDefault:"2024-01"`

	// Catalog mapping per plan. Zero values mean "no mapping configured"
	// and force the free-text line-item fallback.
	YearlyProductID  int64 `env:"YEARLY_PRODUCT_ID"`
	YearlyVariantID  int64 `env:"YEARLY_VARIANT_ID"`
	MonthlyProductID int64 `env:"MONTHLY_PRODUCT_ID"`
	MonthlyVariantID int64 `env:"MONTHLY_VARIANT_ID"`

	OrderTags  string `env:"ORDER_TAGS"`
	SourceName string `env:"SOURCE_NAME"`
}

type Sync struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	BaseURL string `env:"BASE_URL"`
	APIKey  string `env:"API_KEY"`

	YearlyVariantID      string `env:"YEARLY_VARIANT_ID"`
	MonthlyVariantID     string `env:"MONTHLY_VARIANT_ID"`
	YearlySellingPlanID  string `env:"YEARLY_SELLING_PLAN_ID"`
	MonthlySellingPlanID string `env:"MONTHLY_SELLING_PLAN_ID"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
