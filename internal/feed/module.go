package feed

import "go.uber.org/fx"

// Module provides the feed service
var Module = fx.Module("feed",
	fx.Provide(NewService),
)
