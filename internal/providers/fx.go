package providers

import (
	"github.com/researchhub/workspaces/internal/providers/email"
	"github.com/researchhub/workspaces/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
