package config

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/nivash/building-service/internal/constants"
	"github.com/nivash/building-service/internal/utils"
)

type Config struct {
	OrganizationName                string
	AppName                         string
	AppPort                         string
	AppUrl                          string
	DBUrl                           string
	StripeSecretKey                 string
	SendgridAPIKey                  string
	RSAPublicKey                    *rsa.PublicKey
	LDFlag_CouponStickyAcrossMonths bool
	LDFlag_SendgridFromEmail        string
	LDFlag_SendgridSandboxMode      bool
	LDFlag_CORSHighSecurity         bool
	LDFlag_SeedDbWithTestData       bool
}

const LDConnectionTimeout = 5 * time.Second

// Injected at build time via -ldflags.
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

func LoadConfig() *Config {
	if AppName == "" {
		utils.Logger.Fatal("AppName ldflag missing")
	}
	if LDServerContextKey == "" || LDServerContextKind == "" {
		utils.Logger.Fatal("LD context ldflags missing")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appUrl := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}

	client, err := utils.NewBWSSecretsClient()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to initialize BWSSecretsClient")
	}

	appSecretsName := fmt.Sprintf("%s-%s", AppName, env)
	appSecrets, err := client.GetBWSSecrets(appSecretsName)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to fetch app secrets from BWS")
	}

	sharedSecretsName := fmt.Sprintf("shared-%s", env)
	sharedSecrets, err := client.GetBWSSecrets(sharedSecretsName)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to fetch shared secrets from BWS")
	}

	dbURL, ok := appSecrets["DB_URL"]
	if !ok || dbURL == "" {
		utils.Logger.Fatalf("DB_URL not found in BWS secrets (%s)", appSecretsName)
	}

	ldSDKKey, ok := appSecrets["LD_SDK_KEY"]
	if !ok || ldSDKKey == "" {
		utils.Logger.Fatalf("LD_SDK_KEY not found in BWS secrets (%s)", appSecretsName)
	}

	pubB64, ok := sharedSecrets["RSA_PUBLIC_KEY_BASE64"]
	if !ok {
		utils.Logger.Fatalf("RSA_PUBLIC_KEY_BASE64 not found in BWS (%s)", sharedSecretsName)
	}
	pubPEM, _ := base64.StdEncoding.DecodeString(pubB64)
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}

	stripeSecretKey, ok := sharedSecrets["STRIPE_SECRET_KEY"]
	if !ok || stripeSecretKey == "" {
		utils.Logger.Fatalf("STRIPE_SECRET_KEY not found in BWS secrets (%s)", sharedSecretsName)
	}

	sendgridAPIKey, ok := sharedSecrets["SENDGRID_API_KEY"]
	if !ok || sendgridAPIKey == "" {
		utils.Logger.Fatalf("SENDGRID_API_KEY not found in BWS secrets (%s)", sharedSecretsName)
	}

	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	defer ldClient.Close()

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	// Sticky by default: a coupon applied at intent time stays applied
	// for that charge even if it expires before the ledger is written.
	couponStickyFlag, err := ldClient.BoolVariation("coupon_sticky_across_months", ctx, true)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving coupon_sticky_across_months flag")
	}
	utils.Logger.Debugf("coupon_sticky_across_months flag: %t", couponStickyFlag)

	sgFromFlag, err := ldClient.StringVariation("sendgrid_from_email", ctx, "")
	if err != nil {
		ldClient.Close()
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_from_email flag")
	}
	if sgFromFlag == "" {
		sgFromFlag = "no-reply@nivash.app" // Fallback
	}

	sgSandboxFlag, err := ldClient.BoolVariation("sendgrid_sandbox_mode", ctx, false)
	if err != nil {
		ldClient.Close()
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_sandbox_mode flag")
	}

	corsHighSecurityFlag, err := ldClient.BoolVariation("cors_high_security", ctx, false)
	if err != nil {
		ldClient.Close()
		utils.Logger.WithError(err).Fatal("Error retrieving cors_high_security flag")
	}
	utils.Logger.Debugf("cors_high_security flag: %t", corsHighSecurityFlag)

	seedDbWithTestDataFlag, err := ldClient.BoolVariation("seed_db_with_test_data", ctx, false)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving seed_db_with_test_data flag")
	}
	utils.Logger.Debugf("seed_db_with_test_data flag: %t", seedDbWithTestDataFlag)

	return &Config{
		OrganizationName:                constants.OrganizationName,
		AppName:                         AppName,
		AppPort:                         appPort,
		AppUrl:                          appUrl,
		DBUrl:                           dbURL,
		StripeSecretKey:                 stripeSecretKey,
		SendgridAPIKey:                  sendgridAPIKey,
		RSAPublicKey:                    pubKey,
		LDFlag_CouponStickyAcrossMonths: couponStickyFlag,
		LDFlag_SendgridFromEmail:        sgFromFlag,
		LDFlag_SendgridSandboxMode:      sgSandboxFlag,
		LDFlag_CORSHighSecurity:         corsHighSecurityFlag,
		LDFlag_SeedDbWithTestData:       seedDbWithTestDataFlag,
	}
}
