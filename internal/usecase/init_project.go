package usecase

import (
	"context"
	"fmt"
)

// InitProject scaffolds mangonel.toml, a first deploy script and the
// deployments directory in the current directory
type InitProject struct {
	fileWriter FileWriter
	progress   ProgressSink
}

// NewInitProject creates a new init project use case
func NewInitProject(fileWriter FileWriter, progress ProgressSink) *InitProject {
	return &InitProject{
		fileWriter: fileWriter,
		progress:   progress,
	}
}

// InitProjectResult contains the result of project initialization
type InitProjectResult struct {
	AlreadyInitialized bool
	Steps              []InitStep
}

// InitStep represents a step in the initialization process
type InitStep struct {
	Name    string
	Success bool
	Message string
	Error   error
}

// projectFile is a scaffolded file written only when missing
type projectFile struct {
	step    string
	path    string
	content string
}

// Execute initializes a mangonel project
func (i *InitProject) Execute(ctx context.Context) (*InitProjectResult, error) {
	result := &InitProjectResult{}

	exists, err := i.fileWriter.FileExists(ctx, "mangonel.toml")
	if err != nil {
		return nil, fmt.Errorf("failed to check mangonel.toml: %w", err)
	}
	result.AlreadyInitialized = exists

	files := []projectFile{
		{step: "Create mangonel.toml", path: "mangonel.toml", content: projectTemplate},
		{step: "Create deploy script", path: "deploy/001_event_contract.yaml", content: deployScriptTemplate},
		{step: "Create environment example", path: ".env.example", content: envExampleTemplate},
	}
	for _, file := range files {
		step := i.writeIfMissing(ctx, file)
		result.Steps = append(result.Steps, step)
		if step.Error != nil {
			return result, step.Error
		}
	}

	step := InitStep{Name: "Create deployments directory", Success: true, Message: "deployments/"}
	if err := i.fileWriter.EnsureDirectory(ctx, "deployments"); err != nil {
		step = InitStep{Name: step.Name, Error: fmt.Errorf("failed to create deployments directory: %w", err)}
	}
	result.Steps = append(result.Steps, step)
	return result, step.Error
}

func (i *InitProject) writeIfMissing(ctx context.Context, file projectFile) InitStep {
	exists, err := i.fileWriter.FileExists(ctx, file.path)
	if err != nil {
		return InitStep{Name: file.step, Error: fmt.Errorf("failed to check %s: %w", file.path, err)}
	}
	if exists {
		return InitStep{Name: file.step, Success: true, Message: file.path + " already exists"}
	}

	if err := i.fileWriter.WriteFile(ctx, file.path, file.content); err != nil {
		return InitStep{Name: file.step, Error: fmt.Errorf("failed to create %s: %w", file.path, err)}
	}
	i.progress.Info("Created " + file.path)
	return InitStep{Name: file.step, Success: true, Message: "Created " + file.path}
}

const projectTemplate = `# mangonel.toml
#
# Account entries and API keys reference environment variables, loaded from
# .env and .env.local.

[compiler]
version = "0.8.24"
optimizer = false
artifacts = "out"
command = "forge build"

[networks.sst]
chain_id = 534351
url = "https://sepolia-rpc.scroll.io/"
accounts = ["${PRIVATE_KEY_SST}"]
live = true

[named_accounts.deployer]
default = 0

[etherscan.api_key]
arbitrumOne = "${ETHERSCAN_KEY_ARB}"
optimisticEthereum = "${ETHERSCAN_KEY_OP}"
mainnet = "${ETHERSCAN_KEY}"
sst = "${ETHERSCAN_KEY_SST}"

[[etherscan.custom_chains]]
network = "sst"
chain_id = 534351
api_url = "https://api-sepolia.scrollscan.com/api"
browser_url = "https://sepolia.scrollscan.com"
`

const deployScriptTemplate = `tags: [test, EventContract]
deployments:
  - name: EventContract
    from: deployer
    proxy:
      kind: OpenZeppelinTransparentProxy
      execute:
        init:
          method: initialize
          args: ["0xf8Bc58f8aef773aBBA1019E8aA048fc5AF876a38"]
  - name: ERC20Mock
    from: deployer
    args: ["Be Right There", "BRT"]
    skip: true
`

const envExampleTemplate = `# Deployer key for the sst network
PRIVATE_KEY_SST=

# Explorer API keys for verification
ETHERSCAN_KEY=
ETHERSCAN_KEY_ARB=
ETHERSCAN_KEY_OP=
ETHERSCAN_KEY_SST=
`
