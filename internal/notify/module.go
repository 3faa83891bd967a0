package notify

import "go.uber.org/fx"

// Module provides the dispatcher wake signal.
var Module = fx.Provide(NewSignal)
