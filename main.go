package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"concierge/analysis"
	"concierge/chat"
	"concierge/config"
	"concierge/logging"
	"concierge/model"
	"concierge/provider"
	"concierge/refdata"
	"concierge/sandbox"
	"concierge/storage"
	"concierge/tools"
)

const Version = "v0.1.0"

// envIdentity resolves the current user from the environment. Stands in
// for the external authentication layer; the orchestrator only needs the
// capability, not the implementation.
type envIdentity struct{}

func (envIdentity) CurrentUser() (*model.User, error) {
	token := os.Getenv("CONCIERGE_USER_TOKEN")
	if token == "" {
		return nil, nil
	}
	return &model.User{
		ID:    os.Getenv("CONCIERGE_USER_ID"),
		Email: os.Getenv("CONCIERGE_USER_EMAIL"),
		Token: token,
	}, nil
}

func main() {
	logging.Init(config.CheckDebug())
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	settings := cfg.Settings

	creds := config.NewCredentialStore(config.SecurityPlainText, "")
	if err := creds.Load(cfg.DataDir()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load credentials: %v\n", err)
		os.Exit(1)
	}

	p, err := buildProvider(settings, creds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create provider: %v\n", err)
		os.Exit(1)
	}

	store := refdata.Default()
	engine := analysis.NewEngine(store)

	insights, err := storage.NewInsightStore(cfg.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open insight store: %v\n", err)
		os.Exit(1)
	}
	defer insights.Close()

	catalog := tools.NewCatalog(store, engine, insights)
	sb := sandbox.New(catalog)

	opts := []chat.Option{
		chat.WithSampling(settings.Temperature, settings.MaxTokens),
		chat.WithChangePage(func(destination string) {
			fmt.Printf("[navigating to %s]\n", destination)
		}),
	}
	if settings.SystemPrompt != "" {
		opts = append(opts, chat.WithSystemPrompt(settings.SystemPrompt))
	}
	if settings.EnableHistory {
		transcripts, err := storage.NewTranscriptStore(cfg.DataDir())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open transcript store: %v\n", err)
			os.Exit(1)
		}
		opts = append(opts, chat.WithRecorder(
			storage.NewTranscriptRecorder(transcripts, "session", p.Name(), p.Model()),
		))
	}

	orchestrator := chat.New(p, sb, catalog, opts...)

	fmt.Printf("concierge %s, provider %s (%s)\n", Version, p.Name(), p.Model())
	fmt.Println("Commands: /quit /abort /spending")
	repl(orchestrator)
}

func buildProvider(settings config.ChatSettings, creds *config.CredentialStore) (model.Provider, error) {
	pcfg := provider.Config{
		Type:  provider.MapProviderIDToType(settings.Provider),
		Model: settings.Model,
	}
	if settings.APIKeyRef != "" {
		pcfg.APIKey = creds.Get(settings.APIKeyRef)
	}

	switch settings.Provider {
	case "intervised":
		pcfg.BaseURL = settings.RelayURL
		pcfg.Identity = envIdentity{}
	case "openai":
		pcfg.Vendor = provider.VendorOpenAI
	case "azure":
		pcfg.Vendor = provider.VendorAzure
		pcfg.AzureEndpoint = settings.AzureEndpoint
		pcfg.AzureDeployment = settings.AzureDeployment
	case "anthropic-compat":
		pcfg.Vendor = provider.VendorAnthropic
	case "ollama":
		pcfg.BaseURL = settings.OllamaHost
	}

	return provider.NewProvider(pcfg)
}

func repl(orchestrator *chat.Orchestrator) {
	scanner := bufio.NewScanner(os.Stdin)
	printed := 0

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit":
			return
		case "/abort":
			orchestrator.Abort()
			continue
		case "/spending":
			info, err := orchestrator.RefreshSpending(context.Background())
			if err != nil {
				fmt.Printf("spending lookup failed: %v\n", err)
			} else if info == nil {
				fmt.Println("this provider has no spending limits")
			} else {
				fmt.Printf("spent $%.2f of $%.2f ($%.2f remaining)\n",
					info.Current, info.Limit, info.Remaining)
			}
			continue
		}

		if err := orchestrator.SendMessage(context.Background(), line); err != nil {
			fmt.Printf("error: %v\n", err)
		}

		// Print whatever landed in the history since last time.
		history := orchestrator.History()
		for _, msg := range history[printed:] {
			switch msg.Role {
			case model.RoleModel:
				if msg.Text != "" {
					fmt.Println(msg.Text)
				}
				for _, call := range msg.ToolCalls {
					fmt.Printf("[tool: %s]\n", call.Name)
				}
			case model.RoleSystem:
				fmt.Printf("!! %s\n", msg.Text)
			}
		}
		printed = len(history)
	}
}
