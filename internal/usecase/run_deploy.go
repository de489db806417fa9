package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/mangonel/internal/domain"
	"github.com/trebuchet-org/mangonel/internal/domain/config"
	"github.com/trebuchet-org/mangonel/internal/domain/models"
)

// DeployAction tells what a run did for one deployment
type DeployAction string

const (
	ActionDeployed DeployAction = "deployed"
	ActionReused   DeployAction = "reused"
	ActionPlanned  DeployAction = "planned"
	ActionSkipped  DeployAction = "skipped"
)

// RunDeployParams contains parameters for a deploy run
type RunDeployParams struct {
	Tags        []string
	Reset       bool
	DryRun      bool
	SkipCompile bool
	Select      bool // narrow the selected scripts interactively
}

// DeploymentResult is the outcome of one deploy step
type DeploymentResult struct {
	Script         string
	Name           string
	Contract       string
	Kind           models.DeploymentKind
	Action         DeployAction
	Address        string
	TxHash         string
	GasUsed        uint64
	Implementation string // proxied deployments only
	ProxyKind      models.ProxyKind
}

// RunDeployResult contains the outcome of a deploy run
type RunDeployResult struct {
	Network *domain.Network
	Scripts []*models.DeployScript
	Results []*DeploymentResult
	DryRun  bool
}

// Count returns how many deployments ended with the action
func (r *RunDeployResult) Count(action DeployAction) int {
	n := 0
	for _, res := range r.Results {
		if res.Action == action {
			n++
		}
	}
	return n
}

// RunDeploy runs the deploy scripts against the configured network
type RunDeploy struct {
	config      *config.RuntimeConfig
	scripts     ScriptRepository
	artifacts   ArtifactRepository
	compiler    Compiler
	deployments DeploymentRepository
	accounts    AccountResolver
	encoder     ABIEncoder
	chain       ChainClient
	events      ProxyEventParser
	selector    ScriptSelector
	confirmer   Confirmer
	progress    ProgressSink
	now         func() time.Time
}

// NewRunDeploy creates a new RunDeploy use case
func NewRunDeploy(
	cfg *config.RuntimeConfig,
	scripts ScriptRepository,
	artifacts ArtifactRepository,
	compiler Compiler,
	deployments DeploymentRepository,
	accounts AccountResolver,
	encoder ABIEncoder,
	chain ChainClient,
	events ProxyEventParser,
	selector ScriptSelector,
	confirmer Confirmer,
	progress ProgressSink,
) *RunDeploy {
	return &RunDeploy{
		config:      cfg,
		scripts:     scripts,
		artifacts:   artifacts,
		compiler:    compiler,
		deployments: deployments,
		accounts:    accounts,
		encoder:     encoder,
		chain:       chain,
		events:      events,
		selector:    selector,
		confirmer:   confirmer,
		progress:    progress,
		now:         time.Now,
	}
}

// deployRun carries the state shared by the steps of one run
type deployRun struct {
	params  RunDeployParams
	network *domain.Network
	script  *models.DeployScript
	signer  *domain.Signer
}

// deployed is a record plus what happened to it in this run
type deployed struct {
	record  *models.Deployment
	action  DeployAction
	gasUsed uint64
	logs    *DeployedContract
}

// contractPlan is a contract creation ready to be sent
type contractPlan struct {
	name     string
	kind     models.DeploymentKind
	artifact *models.Artifact
	abi      *abi.ABI
	args     []any
	argsData []byte
}

// Run executes the deploy scripts selected by the tags
func (uc *RunDeploy) Run(ctx context.Context, params RunDeployParams) (*RunDeployResult, error) {
	network := uc.config.Network
	if network == nil {
		return nil, domain.ErrNetworkRequired
	}

	if !params.DryRun {
		if err := uc.chain.Connect(ctx, network); err != nil {
			return nil, err
		}
		defer uc.chain.Close()
	}

	if !params.SkipCompile && !params.DryRun {
		uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageCompiling, Message: "Compiling contracts", Spinner: true})
		if err := uc.compiler.Build(ctx); err != nil {
			return nil, fmt.Errorf("compilation failed: %w", err)
		}
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageLoading, Message: "Loading deploy scripts", Spinner: true})
	all, err := uc.scripts.LoadScripts(ctx)
	if err != nil {
		return nil, err
	}
	scripts, err := uc.scripts.SelectScripts(all, params.Tags)
	if err != nil {
		return nil, err
	}
	if params.Select && !uc.config.NonInteractive {
		if scripts, err = uc.selector.SelectScripts(ctx, scripts); err != nil {
			return nil, err
		}
	}

	total := countSteps(scripts)
	if network.Live && !params.DryRun && !uc.config.NonInteractive && total > 0 {
		ok, err := uc.confirmer.Confirm(ctx, fmt.Sprintf("Deploy %d contract(s) to live network %s (chain %d)", total, network.Name, network.ChainID))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrAborted
		}
	}

	result := &RunDeployResult{Network: network, Scripts: scripts, DryRun: params.DryRun}
	current := 0
	for _, script := range scripts {
		for i := range script.Deployments {
			step := &script.Deployments[i]
			if step.Skip {
				result.Results = append(result.Results, &DeploymentResult{
					Script: script.ID, Name: step.Name, Contract: step.ArtifactName(), Action: ActionSkipped,
				})
				continue
			}

			current++
			uc.progress.OnProgress(ctx, ProgressEvent{
				Stage:   StageDeploying,
				Current: current,
				Total:   total,
				Message: describeStep(step),
				Spinner: true,
			})

			res, err := uc.runStep(ctx, &deployRun{params: params, network: network, script: script}, step)
			if err != nil {
				return result, fmt.Errorf("%s/%s: %w", script.ID, step.Name, err)
			}
			result.Results = append(result.Results, res)
		}
	}

	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageCompleted, Message: completionMessage(result)})
	return result, nil
}

func (uc *RunDeploy) runStep(ctx context.Context, run *deployRun, step *models.DeployStep) (*DeploymentResult, error) {
	signer, err := uc.accounts.ResolveAccount(ctx, step.From, run.network)
	if err != nil {
		return nil, err
	}
	if !run.params.DryRun && !signer.CanSign() {
		return nil, fmt.Errorf("%w: %s (%s)", domain.ErrSignerWithoutKey, step.From, signer.Address.Hex())
	}
	run.signer = signer

	if step.Proxy != nil {
		return uc.deployProxied(ctx, run, step)
	}

	artifact, contractABI, err := uc.loadArtifact(ctx, step.ArtifactName())
	if err != nil {
		return nil, err
	}
	args, argsData, err := uc.encoder.EncodeConstructor(contractABI, step.Args, uc.accountLookup(ctx, run.network))
	if err != nil {
		return nil, err
	}

	out, err := uc.ensureDeployed(ctx, run, &contractPlan{
		name:     step.Name,
		kind:     models.SingletonDeployment,
		artifact: artifact,
		abi:      contractABI,
		args:     args,
		argsData: argsData,
	})
	if err != nil {
		return nil, err
	}

	return &DeploymentResult{
		Script:   run.script.ID,
		Name:     step.Name,
		Contract: artifact.Name,
		Kind:     models.SingletonDeployment,
		Action:   out.action,
		Address:  out.record.Address,
		TxHash:   out.record.TransactionHash,
		GasUsed:  out.gasUsed,
	}, nil
}

// deployProxied deploys <name>_Implementation and <name>_Proxy, then saves
// <name> with the proxy address and the implementation ABI
func (uc *RunDeploy) deployProxied(ctx context.Context, run *deployRun, step *models.DeployStep) (*DeploymentResult, error) {
	kind := step.Proxy.Kind
	if kind == "" {
		kind = models.TransparentProxy
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unsupported proxy kind %q", kind)
	}
	lookup := uc.accountLookup(ctx, run.network)

	implArtifact, implABI, err := uc.loadArtifact(ctx, step.ArtifactName())
	if err != nil {
		return nil, err
	}
	implArgs, implArgsData, err := uc.encoder.EncodeConstructor(implABI, step.Args, lookup)
	if err != nil {
		return nil, err
	}
	implPlan := &contractPlan{
		name:     models.ImplementationName(step.Name),
		kind:     models.ImplementationDeployment,
		artifact: implArtifact,
		abi:      implABI,
		args:     implArgs,
		argsData: implArgsData,
	}

	if err := uc.checkUpgrade(ctx, run, step.Name, implPlan); err != nil {
		return nil, err
	}

	var initData []byte
	var execute *models.Execute
	if init := step.Initializer(); init != nil {
		initArgs, data, err := uc.encoder.EncodeCall(implABI, init.Method, init.Args, lookup)
		if err != nil {
			return nil, err
		}
		initData = data
		execute = &models.Execute{MethodName: init.Method, Args: uc.encoder.DisplayArgs(initArgs)}
	}

	owner := run.signer.Address
	if step.Proxy.Owner != "" {
		if owner, err = uc.resolveAddress(ctx, step.Proxy.Owner, run.network); err != nil {
			return nil, fmt.Errorf("proxy owner: %w", err)
		}
	}

	impl, err := uc.ensureDeployed(ctx, run, implPlan)
	if err != nil {
		return nil, err
	}

	proxyArtifactName := step.Proxy.Artifact
	if proxyArtifactName == "" {
		proxyArtifactName = kind.DefaultArtifact()
	}
	proxyArtifact, proxyABI, err := uc.loadArtifact(ctx, proxyArtifactName)
	if err != nil {
		return nil, err
	}

	implAddress := common.HexToAddress(impl.record.Address)
	proxyArgs, proxyArgsData, err := uc.encoder.EncodeConstructor(proxyABI, uc.encoder.ProxyConstructorArgs(kind, implAddress, owner, initData), nil)
	if err != nil {
		return nil, fmt.Errorf("proxy constructor: %w", err)
	}

	proxyPlan := &contractPlan{
		name:     models.ProxyName(step.Name),
		kind:     models.ProxyContractDeployment,
		artifact: proxyArtifact,
		abi:      proxyABI,
		args:     proxyArgs,
		argsData: proxyArgsData,
	}
	proxy, err := uc.reuseProxy(ctx, run, step.Name, proxyPlan, impl)
	if err != nil {
		return nil, err
	}
	if proxy == nil {
		if proxy, err = uc.deploy(ctx, run, proxyPlan); err != nil {
			return nil, err
		}
	}

	result := &DeploymentResult{
		Script:         run.script.ID,
		Name:           step.Name,
		Contract:       implArtifact.Name,
		Kind:           models.ProxyDeployment,
		Action:         proxy.action,
		Address:        proxy.record.Address,
		TxHash:         proxy.record.TransactionHash,
		GasUsed:        impl.gasUsed + proxy.gasUsed,
		Implementation: impl.record.Address,
		ProxyKind:      kind,
	}
	if impl.action == ActionDeployed && proxy.action != ActionDeployed {
		result.Action = ActionDeployed
	}
	if run.params.DryRun {
		return result, nil
	}

	existing, err := uc.existingRecord(ctx, run, step.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil && impl.action == ActionReused && proxy.action == ActionReused {
		return result, nil
	}

	info := &models.ProxyInfo{
		Kind:           kind,
		Address:        proxy.record.Address,
		Owner:          owner.Hex(),
		Implementation: impl.record.Address,
	}
	if proxy.logs != nil {
		if events := uc.events.ParseProxyEvents(proxy.logs.Address, proxy.logs.Logs); events != nil && events.Admin != nil {
			info.Admin = events.Admin.Hex()
		}
	} else if existing != nil && existing.Proxy != nil {
		info.Admin = existing.Proxy.Admin
	}

	record := &models.Deployment{
		Name:             step.Name,
		Network:          run.network.Name,
		ChainID:          run.network.ChainID,
		Kind:             models.ProxyDeployment,
		ContractName:     implArtifact.Name,
		Address:          proxy.record.Address,
		ABI:              implArtifact.ABI,
		TransactionHash:  proxy.record.TransactionHash,
		Receipt:          proxy.record.Receipt,
		Args:             impl.record.Args,
		Bytecode:         impl.record.Bytecode,
		DeployedBytecode: impl.record.DeployedBytecode,
		BytecodeHash:     impl.record.BytecodeHash,
		SourcePath:       impl.record.SourcePath,
		CompilerVersion:  impl.record.CompilerVersion,
		Implementation:   impl.record.Address,
		Proxy:            info,
		Execute:          execute,
		Script:           run.script.ID,
	}
	if err := uc.deployments.SaveDeployment(ctx, record); err != nil {
		return nil, err
	}
	return result, nil
}

// checkUpgrade fails when a proxy exists but its implementation would change
func (uc *RunDeploy) checkUpgrade(ctx context.Context, run *deployRun, name string, implPlan *contractPlan) error {
	if run.params.Reset {
		return nil
	}
	proxy, err := uc.existingRecord(ctx, run, models.ProxyName(name))
	if err != nil || proxy == nil {
		return err
	}
	impl, err := uc.existingRecord(ctx, run, implPlan.name)
	if err != nil {
		return err
	}
	if impl == nil || !matchesPlan(impl, implPlan) {
		return fmt.Errorf("%w: %s proxy at %s", domain.ErrUpgradeRequired, name, proxy.Address)
	}
	return nil
}

// ensureDeployed reuses a matching record whose code is on chain, else deploys and saves
func (uc *RunDeploy) ensureDeployed(ctx context.Context, run *deployRun, plan *contractPlan) (*deployed, error) {
	if !run.params.Reset {
		existing, err := uc.existingRecord(ctx, run, plan.name)
		if err != nil {
			return nil, err
		}
		if existing != nil && matchesPlan(existing, plan) {
			if run.params.DryRun {
				return &deployed{record: existing, action: ActionReused}, nil
			}
			exists, err := uc.chain.CodeExists(ctx, common.HexToAddress(existing.Address))
			if err != nil {
				return nil, err
			}
			if exists {
				return &deployed{record: existing, action: ActionReused}, nil
			}
			uc.progress.Info(fmt.Sprintf("%s has no code at %s, redeploying", plan.name, existing.Address))
		}
	}
	return uc.deploy(ctx, run, plan)
}

// reuseProxy keeps an existing proxy whose code is on chain. The proxy address
// is fixed once created: the initializer and owner only apply to a new proxy,
// and pointing it at another implementation is an upgrade.
func (uc *RunDeploy) reuseProxy(ctx context.Context, run *deployRun, name string, plan *contractPlan, impl *deployed) (*deployed, error) {
	if run.params.Reset {
		return nil, nil
	}
	existing, err := uc.existingRecord(ctx, run, plan.name)
	if err != nil || existing == nil || existing.Address == "" {
		return nil, err
	}
	if !run.params.DryRun {
		exists, err := uc.chain.CodeExists(ctx, common.HexToAddress(existing.Address))
		if err != nil {
			return nil, err
		}
		if !exists {
			uc.progress.Info(fmt.Sprintf("%s has no code at %s, redeploying", plan.name, existing.Address))
			return nil, nil
		}
	}

	current := ""
	if record, err := uc.existingRecord(ctx, run, name); err != nil {
		return nil, err
	} else if record != nil {
		current = record.Implementation
	}
	if impl.action != ActionReused || (current != "" && !strings.EqualFold(current, impl.record.Address)) {
		return nil, fmt.Errorf("%w: %s proxy at %s", domain.ErrUpgradeRequired, name, existing.Address)
	}

	if existing.ArgsData != hexutil.Encode(plan.argsData) {
		uc.progress.Info(fmt.Sprintf("%s keeps its proxy at %s; initializer and owner changes only apply to a new proxy (use --reset)", name, existing.Address))
	}
	return &deployed{record: existing, action: ActionReused}, nil
}

// deploy sends the creation transaction and saves the record
func (uc *RunDeploy) deploy(ctx context.Context, run *deployRun, plan *contractPlan) (*deployed, error) {
	record := uc.newRecord(run, plan)
	if run.params.DryRun {
		return &deployed{record: record, action: ActionPlanned}, nil
	}

	out, err := uc.chain.DeployContract(ctx, run.signer, plan.abi, plan.artifact.Bytecode.Bytes(), plan.args)
	if err != nil {
		return nil, err
	}
	record.Address = out.Address.Hex()
	record.TransactionHash = out.TxHash.Hex()
	record.Receipt = out.Receipt

	if err := uc.deployments.SaveDeployment(ctx, record); err != nil {
		return nil, err
	}

	res := &deployed{record: record, action: ActionDeployed, logs: out}
	if out.Receipt != nil {
		res.gasUsed = out.Receipt.GasUsed
	}
	return res, nil
}

func (uc *RunDeploy) newRecord(run *deployRun, plan *contractPlan) *models.Deployment {
	return &models.Deployment{
		Name:             plan.name,
		Network:          run.network.Name,
		ChainID:          run.network.ChainID,
		Kind:             plan.kind,
		ContractName:     plan.artifact.Name,
		ABI:              plan.artifact.ABI,
		Args:             uc.encoder.DisplayArgs(plan.args),
		ArgsData:         hexutil.Encode(plan.argsData),
		Bytecode:         plan.artifact.Bytecode.Hex(),
		DeployedBytecode: plan.artifact.DeployedBytecode.Hex(),
		BytecodeHash:     plan.artifact.BytecodeHash(),
		SourcePath:       plan.artifact.SourcePath,
		CompilerVersion:  plan.artifact.CompilerVersion(),
		Script:           run.script.ID,
		Verification:     models.VerificationInfo{Status: models.VerificationStatusUnverified},
		CreatedAt:        uc.now().UTC(),
	}
}

func (uc *RunDeploy) existingRecord(ctx context.Context, run *deployRun, name string) (*models.Deployment, error) {
	dep, err := uc.deployments.GetDeployment(ctx, run.network.Name, name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return dep, err
}

func (uc *RunDeploy) loadArtifact(ctx context.Context, name string) (*models.Artifact, *abi.ABI, error) {
	artifact, err := uc.artifacts.GetArtifact(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if !artifact.HasBytecode() {
		return nil, nil, fmt.Errorf("%s has no bytecode (abstract contract or interface?)", artifact.Name)
	}
	parsed, err := abi.JSON(bytes.NewReader(artifact.ABI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse ABI of %s: %w", artifact.Name, err)
	}
	return artifact, &parsed, nil
}

// accountLookup resolves "@name" arguments to the named account's address
func (uc *RunDeploy) accountLookup(ctx context.Context, network *domain.Network) AccountLookup {
	return func(name string) (common.Address, error) {
		signer, err := uc.accounts.ResolveAccount(ctx, name, network)
		if err != nil {
			return common.Address{}, err
		}
		return signer.Address, nil
	}
}

// resolveAddress accepts a literal address or a named account
func (uc *RunDeploy) resolveAddress(ctx context.Context, ref string, network *domain.Network) (common.Address, error) {
	if common.IsHexAddress(ref) {
		return common.HexToAddress(ref), nil
	}
	return uc.accountLookup(ctx, network)(strings.TrimPrefix(ref, "@"))
}

// matchesPlan reports whether a record was deployed from the same bytecode and arguments
func matchesPlan(record *models.Deployment, plan *contractPlan) bool {
	return record.Address != "" &&
		record.BytecodeHash == plan.artifact.BytecodeHash() &&
		record.ArgsData == hexutil.Encode(plan.argsData)
}

func countSteps(scripts []*models.DeployScript) int {
	n := 0
	for _, script := range scripts {
		for _, step := range script.Deployments {
			if !step.Skip {
				n++
			}
		}
	}
	return n
}

func describeStep(step *models.DeployStep) string {
	if step.Proxy != nil {
		return fmt.Sprintf("%s (behind %s)", step.Name, step.Proxy.Kind)
	}
	return step.Name
}

func completionMessage(result *RunDeployResult) string {
	if result.DryRun {
		return fmt.Sprintf("Planned %d deployment(s)", result.Count(ActionPlanned)+result.Count(ActionReused))
	}
	return fmt.Sprintf("Deployed %d, reused %d", result.Count(ActionDeployed), result.Count(ActionReused))
}
