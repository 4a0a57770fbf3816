package relm

import "github.com/syssam/relm/signal"

var (
	// DeclareFirst is sent for every registered model when the registry is
	// configured, before DeclareLast. The relationship resolver is connected
	// to it.
	DeclareFirst = signal.New[*Model]("declare_first")

	// DeclareLast is sent for every registered model once DeclareFirst was
	// sent for all of them.
	DeclareLast = signal.New[*Model]("declare_last")
)
