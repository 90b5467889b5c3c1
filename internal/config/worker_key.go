package config

type WorkerKeyStruct struct {
	PersistGradingsQueue string
	GradingUpdatesQueue  string
}

var WorkerKey = &WorkerKeyStruct{
	PersistGradingsQueue: "persist_gradings_queue",
	GradingUpdatesQueue:  "grading_updates_queue",
}
