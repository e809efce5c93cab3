package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/marcelsud/telegram-ragbot/config"
	"github.com/marcelsud/telegram-ragbot/telegram"
	"github.com/marcelsud/telegram-ragbot/webhook"
	"github.com/marcelsud/telegram-ragbot/webhook/secrettoken"
)

/* webhookctl - manage the bot's webhook registration from a shell
 * Usage:
 *   webhookctl set [public-url]   register public-url (default WEBHOOK_URL) + WEBHOOK_PATH
 *   webhookctl info               show what the provider has registered
 *   webhookctl delete             remove the registration
 *   webhookctl secret [bytes]     print a random value for WEBHOOK_SECRET (default 32 bytes)
 * Exit codes: 0 = success, 1 = failure, 2 = usage
 */

const (
	timeout           = 30 * time.Second
	defaultSecretSize = 32
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// secret needs no configuration, so it works before the environment is set up
	if os.Args[1] == "secret" {
		token, err := newSecret(os.Args[2:])
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(2)
		}
		fmt.Println(token)
		return
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	client := telegram.NewClient(cfg.Token, telegram.WithBaseURL(cfg.TelegramAPIURL))
	manager := webhook.NewManager(client, cfg.WebhookPath, cfg.WebhookSecret)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var reg webhook.Registration
	switch os.Args[1] {
	case "set":
		target := cfg.WebhookURL
		if len(os.Args) > 2 {
			target = os.Args[2]
		}
		if target == "" {
			fmt.Fprintln(os.Stderr, "❌ no URL given and WEBHOOK_URL is not set")
			os.Exit(1)
		}
		fmt.Printf("🔗 Registering %s...\n", manager.Endpoint(target))
		reg, err = manager.Register(ctx, target)
	case "info":
		reg, err = manager.Verify(ctx)
	case "delete":
		fmt.Println("🗑️  Removing webhook...")
		err = manager.Clear(ctx)
		reg = manager.Snapshot()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Done")
	fmt.Println(string(out))
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: webhookctl set [public-url] | info | delete | secret [bytes]")
}

// newSecret generates a webhook secret; args may carry the size in bytes
func newSecret(args []string) (string, error) {
	size := defaultSecretSize
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("secret size %q is not a number", args[0])
		}
		size = n
	}
	return secrettoken.Generate(size)
}
