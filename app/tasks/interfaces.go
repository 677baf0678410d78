package tasks

type RunnerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
