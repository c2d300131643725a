package profile

import "go.uber.org/fx"

// Module provides the profile and avatar services
var Module = fx.Module("profile",
	fx.Provide(
		NewService,
		NewImageService,
	),
)
