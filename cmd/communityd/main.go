package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aseledger/config"
	"aseledger/core"
	"aseledger/core/genesis"
	"aseledger/observability/logging"
	"aseledger/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis JSON file (overrides config GenesisFile)")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("ASE_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("communityd", env, cfg.LogFile)

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		logger.Error("failed to open database", "err", err, "dataDir", cfg.DataDir)
		os.Exit(1)
	}
	defer db.Close()

	ledger := core.NewLedger(db)

	supply, err := ledger.StateManager().TotalSupply()
	if err != nil {
		logger.Error("failed to read total supply", "err", err)
		os.Exit(1)
	}
	if supply.Sign() == 0 {
		spec, err := resolveGenesis(cfg, *genesisFlag)
		if err != nil {
			logger.Error("failed to resolve genesis", "err", err)
			os.Exit(1)
		}
		if err := spec.Apply(ledger.StateManager()); err != nil {
			logger.Error("failed to apply genesis", "err", err)
			os.Exit(1)
		}
		logger.Info("applied genesis", "allocs", len(spec.Alloc))
	}

	stats, err := ledger.GetCommunityStats()
	if err != nil {
		logger.Error("failed to read community stats", "err", err)
		os.Exit(1)
	}
	logger.Info("community ledger ready",
		"network", cfg.NetworkName,
		"totalSupply", stats.TotalSupply.String(),
		"ancestralOfferings", stats.AncestralOfferings.String(),
		"vaultBalance", stats.VaultBalance.String(),
	)
}

func resolveGenesis(cfg *config.Config, override string) (*genesis.Spec, error) {
	path := strings.TrimSpace(override)
	if path == "" {
		path = strings.TrimSpace(cfg.GenesisFile)
	}
	if path != "" {
		return genesis.LoadFile(path)
	}
	deployer, err := parseDeployer(cfg.DeployerAddress)
	if err != nil {
		return nil, err
	}
	return genesis.Default(deployer), nil
}

func parseDeployer(raw string) ([20]byte, error) {
	var addr [20]byte
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return addr, fmt.Errorf("no genesis file configured and DeployerAddress is empty")
	}
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		trimmed = trimmed[2:]
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("decode DeployerAddress: %w", err)
	}
	if len(decoded) != len(addr) {
		return addr, fmt.Errorf("DeployerAddress must be a 20-byte address")
	}
	copy(addr[:], decoded)
	return addr, nil
}
