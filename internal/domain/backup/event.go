package backup

// Level is the severity of a diagnostic event.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Stage names the orchestration step an event belongs to.
type Stage string

const (
	StageResolve    Stage = "resolve"
	StagePull       Stage = "pull"
	StageLocate     Stage = "locate"
	StageInspect    Stage = "inspect"
	StageSynthesize Stage = "synthesize"
	StageExecute    Stage = "execute"
	StageWait       Stage = "wait"
	StagePublish    Stage = "publish"
	StageDone       Stage = "done"
)

// Event is a diagnostic emitted by the backup workflow.
type Event struct {
	Level   Level
	Stage   Stage
	Service string
	Message string
}
