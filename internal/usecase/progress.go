package usecase

// Progress stages reported by the use cases
const (
	StageCompiling = "compiling"
	StageLoading   = "loading"
	StageDeploying = "deploying"
	StageVerifying = "verifying"
	StageCompleted = "completed"
)
