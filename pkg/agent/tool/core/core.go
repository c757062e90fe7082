package core

import (
	"github.com/jungkj/riscura-sub000/pkg/domain/interfaces"
	"github.com/jungkj/riscura-sub000/pkg/domain/model"
	"github.com/jungkj/riscura-sub000/pkg/domain/model/config"
	"github.com/jungkj/riscura-sub000/pkg/service/index"
	"github.com/m-mizutani/gollem"
)

// New builds the core toolset for the assistant agent.
// The tools expose the risk register, controls library and document
// index to the model, and let it record insights on the given
// conversation.
func New(repo interfaces.Repository, indexSvc index.Service, riskCfg *config.RiskConfig, conversationID model.ConversationID) []gollem.Tool {
	return []gollem.Tool{
		&listRisksTool{repo: repo, riskCfg: riskCfg},
		&getRiskTool{repo: repo, riskCfg: riskCfg},
		&listControlsTool{repo: repo},
		&searchDocumentsTool{repo: repo, index: indexSvc},
		&riskMatrixTool{repo: repo, riskCfg: riskCfg},
		&recordInsightTool{repo: repo, conversationID: conversationID},
	}
}
