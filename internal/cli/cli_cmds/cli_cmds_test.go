package cli_cmds_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/firedragon-ledger/domain/models"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli"
	"github.com/ZanzyTHEbar/firedragon-ledger/internal/cli/cli_cmds"
)

func testConfig(t *testing.T, driver, path string) *internal.Config {
	t.Helper()
	cfg := &internal.Config{}
	cfg.Storage.Driver = driver
	cfg.Storage.Path = path
	cfg.Bank.Name = "Test Bank"
	cfg.Bank.Number = 7
	cfg.NATS.Subject = "test"
	cfg.Log.Level = "error"
	require.NoError(t, cfg.Validate())
	return cfg
}

func testLogger() *internal.Logger {
	return internal.NewWriterLogger(io.Discard, internal.LogLevelError, internal.AllComponents)
}

// newMemoryParams returns params sharing one in-memory runtime across executions
func newMemoryParams(t *testing.T) *cli.CmdParams {
	t.Helper()
	cfg := testConfig(t, internal.StorageDriverMemory, "")
	logger := testLogger()

	rt, err := cli.OpenRuntime(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })

	return &cli.CmdParams{Config: cfg, Logger: logger, Runtime: rt, Use: "fdl"}
}

func execute(params *cli.CmdParams, args ...string) (string, error) {
	params.Palette = cli_cmds.GeneratePalette(params)
	root := cli.NewRootCMD(params).Root
	return cli.ExecuteCommand(root, args...)
}

func mustExecute(t *testing.T, params *cli.CmdParams, args ...string) string {
	t.Helper()
	out, err := execute(params, args...)
	require.NoError(t, err, out)
	return out
}

func registerUser(t *testing.T, params *cli.CmdParams, id, name, balance string) {
	t.Helper()
	mustExecute(t, params, "account", "register", "--id", id, "--name", name, "--pin", "1234", "--balance", balance)
}

func TestWorkedExample(t *testing.T) {
	params := newMemoryParams(t)
	registerUser(t, params, "1", "alice", "100")
	registerUser(t, params, "2", "bob", "0")

	_, err := execute(params, "withdraw", "1", "150", "--pin", "1234")
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)

	out := mustExecute(t, params, "withdraw", "1", "40", "--pin", "1234")
	assert.Contains(t, out, "balance 60.00")

	out = mustExecute(t, params, "transfer", "1", "2", "60", "--pin", "1234")
	assert.Contains(t, out, "Transferred 60.00 from 1 to 2")

	assert.Equal(t, "0.00\n", mustExecute(t, params, "balance", "1", "--pin", "1234"))
	assert.Equal(t, "60.00\n", mustExecute(t, params, "balance", "2", "--pin", "1234"))
}

func TestRegister_Duplicate(t *testing.T) {
	params := newMemoryParams(t)
	registerUser(t, params, "1", "alice", "10")

	_, err := execute(params, "account", "register", "--id", "1", "--name", "mallory", "--pin", "0000")
	assert.ErrorIs(t, err, models.ErrDuplicateAccount)

	_, err = execute(params, "account", "register", "--id", "3", "--name", "carol", "--pin", "1", "--balance=-5")
	assert.ErrorIs(t, err, models.ErrInvalidAmount)

	_, err = execute(params, "account", "register", "--id", "4", "--name", "dave", "--balance", "5")
	assert.ErrorIs(t, err, models.ErrMissingSecret)

	// An ATM is identified by its routing number and may omit it
	mustExecute(t, params, "account", "register", "--id", "900", "--name", "lobby", "--role", "atm")
}

func TestAuthentication(t *testing.T) {
	params := newMemoryParams(t)
	registerUser(t, params, "1", "alice", "100")

	_, err := execute(params, "balance", "1", "--pin", "9999")
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)

	_, err = execute(params, "deposit", "2", "5", "--pin", "1234")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)

	mustExecute(t, params, "account", "change-pin", "1", "--pin", "1234", "--new-pin", "4321")

	_, err = execute(params, "balance", "1", "--pin", "1234")
	assert.ErrorIs(t, err, models.ErrAuthenticationFailed)
	assert.Equal(t, "100.00\n", mustExecute(t, params, "balance", "1", "--pin", "4321"))
}

func TestHistory(t *testing.T) {
	params := newMemoryParams(t)
	registerUser(t, params, "1", "alice", "100")
	mustExecute(t, params, "deposit", "1", "25.50", "--pin", "1234")
	mustExecute(t, params, "withdraw", "1", "10", "--pin", "1234")

	out := mustExecute(t, params, "history", "1", "--pin", "1234", "--format", "json")
	var records []models.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 3)
	assert.Equal(t, models.RecordKindInitialBalance, records[0].Kind)
	assert.Equal(t, models.RecordKindDeposit, records[1].Kind)
	assert.Equal(t, "-10", records[2].Amount.String())

	out = mustExecute(t, params, "history", "1", "--pin", "1234")
	assert.Contains(t, out, "TIMESTAMP")
	assert.Contains(t, out, "25.50")

	out = mustExecute(t, params, "history", "1", "--pin", "1234", "--from", "2999-01-01 00:00:00")
	assert.Equal(t, "No transactions\n", out)

	_, err := execute(params, "history", "1", "--pin", "1234", "--from", "yesterday")
	assert.Error(t, err)

	_, err = execute(params, "history", "1", "--pin", "1234", "--format", "xml")
	assert.Error(t, err)
}

func TestATMAndBank(t *testing.T) {
	params := newMemoryParams(t)
	registerUser(t, params, "1", "alice", "2000")
	mustExecute(t, params, "account", "register", "--id", "900", "--name", "Main St", "--role", "atm", "--pin", "4521")

	out := mustExecute(t, params, "atm", "deposit-bank", "900", "500")
	assert.Contains(t, out, "cash 500.00")

	assert.Equal(t, "500.00\n", mustExecute(t, params, "atm", "cash", "900"))

	_, err := execute(params, "atm", "withdraw", "900", "1", "1000", "--pin", "1234")
	assert.ErrorIs(t, err, models.ErrInsufficientCash)

	out = mustExecute(t, params, "atm", "withdraw", "900", "1", "200", "--pin", "1234")
	assert.Contains(t, out, "balance 1800.00")

	assert.Equal(t, "300.00\n", mustExecute(t, params, "atm", "cash", "900"))

	mustExecute(t, params, "atm", "deposit-user", "900", "1", "50", "--pin", "1234")
	assert.Equal(t, "1850.00\n", mustExecute(t, params, "balance", "1", "--pin", "1234"))
	assert.Equal(t, "350.00\n", mustExecute(t, params, "atm", "cash", "900"))

	_, err = execute(params, "atm", "cash", "1")
	assert.ErrorIs(t, err, models.ErrInvalidRole)

	mustExecute(t, params, "bank", "record", "901", "75")

	out = mustExecute(t, params, "bank", "log", "--atm", "900", "--format", "json")
	var deposits []models.AtmDeposit
	require.NoError(t, json.Unmarshal([]byte(out), &deposits))
	require.Len(t, deposits, 1)
	assert.Equal(t, int64(900), deposits[0].AtmID)

	out = mustExecute(t, params, "bank", "log")
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(out), "\n")))

	out = mustExecute(t, params, "bank", "details")
	assert.Contains(t, out, "Test Bank")
	assert.Contains(t, out, "Number:  7")
}

func TestAccountListAndVerify(t *testing.T) {
	params := newMemoryParams(t)
	assert.Equal(t, "No accounts registered\n", mustExecute(t, params, "account", "list"))

	registerUser(t, params, "2", "bob", "5")
	registerUser(t, params, "1", "alice", "10")

	out := mustExecute(t, params, "account", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "1 "))
	assert.True(t, strings.HasPrefix(lines[2], "2 "))

	out = mustExecute(t, params, "account", "list", "--format", "json")
	assert.NotContains(t, out, "1234")

	out = mustExecute(t, params, "account", "show", "1")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "10.00")

	assert.Equal(t, "Verified 2 ledgers\n", mustExecute(t, params, "account", "verify"))
}

func TestServicesList(t *testing.T) {
	params := newMemoryParams(t)
	registerUser(t, params, "1", "alice", "10")

	out := mustExecute(t, params, "services", "list")
	assert.Contains(t, out, "ledger_events: RUNNING")

	out = mustExecute(t, params, "services", "status")
	assert.Contains(t, out, "NATS disabled")

	_, err := execute(params, "events", "watch")
	assert.Error(t, err)
}

func TestConfigCommands_SkipRuntime(t *testing.T) {
	params := &cli.CmdParams{
		Config: testConfig(t, internal.StorageDriverMemory, ""),
		Logger: testLogger(),
		Use:    "fdl",
	}

	assert.Equal(t, "memory\n", mustExecute(t, params, "config", "get", "storage.driver"))
	assert.Nil(t, params.Runtime)

	out := mustExecute(t, params, "config", "list")
	assert.Contains(t, out, "bank.name = Test Bank")

	_, err := execute(params, "config", "get", "nope")
	assert.Error(t, err)

	out = mustExecute(t, params, "version")
	assert.Contains(t, out, internal.Version)
	assert.Nil(t, params.Runtime)
}

func TestCSVStorage_PersistsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	newParams := func() *cli.CmdParams {
		params := &cli.CmdParams{
			Config: testConfig(t, internal.StorageDriverCSV, dir),
			Logger: testLogger(),
			Use:    "fdl",
		}
		t.Cleanup(func() { params.Close() })
		return params
	}

	registerUser(t, newParams(), "1", "alice", "100")
	registerUser(t, newParams(), "2", "bob", "0")
	mustExecute(t, newParams(), "transfer", "1", "2", "30", "--pin", "1234")

	// A failed command still leaves the runtime closable
	failing := newParams()
	_, err := execute(failing, "withdraw", "2", "500", "--pin", "1234")
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	require.NoError(t, failing.Close())

	assert.Equal(t, "70.00\n", mustExecute(t, newParams(), "balance", "1", "--pin", "1234"))
	assert.Equal(t, "30.00\n", mustExecute(t, newParams(), "balance", "2", "--pin", "1234"))
}

func TestCSVStorage_ATMCashAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	run := func(args ...string) (string, error) {
		params := &cli.CmdParams{
			Config: testConfig(t, internal.StorageDriverCSV, dir),
			Logger: testLogger(),
			Use:    "fdl",
		}
		t.Cleanup(func() { params.Close() })
		return execute(params, args...)
	}
	mustRun := func(args ...string) string {
		t.Helper()
		out, err := run(args...)
		require.NoError(t, err, out)
		return out
	}

	mustRun("account", "register", "--id", "1", "--name", "alice", "--pin", "1234", "--balance", "500")
	mustRun("account", "register", "--id", "900", "--name", "lobby", "--role", "atm", "--pin", "4521")
	mustRun("atm", "deposit-bank", "900", "100")

	mustRun("atm", "withdraw", "900", "1", "100", "--pin", "1234")
	assert.Equal(t, "0.00\n", mustRun("atm", "cash", "900"))

	_, err := run("atm", "withdraw", "900", "1", "100", "--pin", "1234")
	assert.ErrorIs(t, err, models.ErrInsufficientCash)
	assert.Equal(t, "400.00\n", mustRun("balance", "1", "--pin", "1234"))
}

func TestStorageFlagOverride(t *testing.T) {
	dir := t.TempDir()
	params := &cli.CmdParams{
		Config: testConfig(t, internal.StorageDriverMemory, ""),
		Logger: testLogger(),
		Use:    "fdl",
	}
	t.Cleanup(func() { params.Close() })

	mustExecute(t, params, "--storage-driver", "csv", "--storage-path", dir,
		"account", "register", "--id", "1", "--name", "alice", "--pin", "1234", "--balance", "100")
	assert.Equal(t, internal.StorageDriverCSV, params.Config.Storage.Driver)

	csvParams := &cli.CmdParams{
		Config: testConfig(t, internal.StorageDriverCSV, dir),
		Logger: testLogger(),
		Use:    "fdl",
	}
	t.Cleanup(func() { csvParams.Close() })
	assert.Equal(t, "100.00\n", mustExecute(t, csvParams, "balance", "1", "--pin", "1234"))
}
