package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/domain"
	"github.com/hugocontabilidadesimplotech-dot/Contador-AI/internal/taxonomy"
)

func companyContextBlock(company *domain.CompanyContext) string {
	cnpj, accounts := "Não informado", "Não informado"
	if company != nil {
		if company.CNPJ != "" {
			cnpj = company.CNPJ
		}
		if company.KnownAccounts != "" {
			accounts = company.KnownAccounts
		}
	}
	return fmt.Sprintf(
		"**DADOS DA EMPRESA (CLIENTE) PARA CONTEXTO:**\n"+
			"- **CNPJ/CPF Principal:** %s\n"+
			"- **Contas e Vínculos Conhecidos (Contas, PIX, Nomes de Sócios, Empresas do Grupo):** %s\n",
		cnpj, accounts)
}

func chartOfAccountsBlock(tax taxonomy.Taxonomy) string {
	var revenue, expense, transit []string
	for _, name := range tax.Accounts() {
		switch tax.Classify(name) {
		case taxonomy.Revenue:
			revenue = append(revenue, name)
		case taxonomy.Expense:
			expense = append(expense, name)
		case taxonomy.EquityTransit:
			transit = append(transit, name)
		}
	}
	var b strings.Builder
	b.WriteString("#### ESTRUTURA PADRÃO DO PLANO DE CONTAS\n")
	b.WriteString("- **RECEITAS**: " + strings.Join(revenue, ", ") + ".\n")
	b.WriteString("- **DESPESAS**: " + strings.Join(expense, ", ") + ".\n")
	b.WriteString("- **INVESTIMENTOS/FINANCIAMENTOS/TRANSITÓRIAS**: " + strings.Join(transit, ", ") + ".\n")
	return b.String()
}

// statementPrompt builds the master prompt for bank statement processing.
// The needsReview threshold (confidence < 0.85) deliberately lives here, in
// the oracle boundary, as a documented policy: the engine displays the flag
// but never re-derives it.
func statementPrompt(company *domain.CompanyContext, tax taxonomy.Taxonomy) string {
	var b strings.Builder
	b.WriteString("Você é um sistema de IA contábil treinado para classificar transações bancárias ")
	b.WriteString("e extrair dados essenciais para garantir balancetes equilibrados. ")
	b.WriteString("Analise o extrato fornecido e retorne um JSON estruturado.\n\n")
	b.WriteString(companyContextBlock(company))
	b.WriteString("\n### FASE 1: IDENTIFICAÇÃO DE TRANSAÇÕES INTERNAS (PRIORIDADE MÁXIMA)\n")
	b.WriteString("REGRA MESTRA: NUNCA CLASSIFIQUE UMA TRANSAÇÃO INTERNA COMO RECEITA OU DESPESA. ")
	b.WriteString("Classifique como \"Transferência Interna\" quando remetente e destinatário tiverem o mesmo ")
	b.WriteString("CPF/CNPJ principal, quando a descrição mencionar contas ou nomes dos vínculos conhecidos, ")
	b.WriteString("ou quando houver entrada e saída de valor idêntico em dias próximos.\n\n")
	b.WriteString("### FASE 2: EXTRAÇÃO E LIMPEZA\n")
	b.WriteString("Ignore cabeçalhos, rodapés e resumos de saldo. Datas no formato YYYY-MM-DD. ")
	b.WriteString("Saídas (débitos) devem ser negativas, entradas (créditos) positivas; ")
	b.WriteString("remova \"R$\" e use ponto como separador decimal. Nenhuma transação pode ter valor zero.\n\n")
	b.WriteString("### FASE 3: CLASSIFICAÇÃO CONTÁBIL\n")
	b.WriteString("Use EXCLUSIVAMENTE as contas do plano abaixo. Estornos vão para 'Ajustes e Estornos' ")
	b.WriteString("com needsReview true.\n\n")
	b.WriteString(chartOfAccountsBlock(tax))
	b.WriteString("\n### FASE 4: VALIDAÇÃO E CONFIANÇA\n")
	b.WriteString("Para cada transação inclua confidenceScore (0.0 a 1.0) e needsReview ")
	b.WriteString("(true quando confidenceScore < 0.85, quando a descrição for vaga ou quando for estorno).\n\n")
	b.WriteString("### FASE 5: SAÍDA ESTRUTURADA\n")
	b.WriteString("Retorne APENAS o JSON final, sem texto adicional e sem cercas de código, com as chaves:\n")
	b.WriteString("- \"banco\": nome do banco identificado no extrato (string, vazio se não identificado)\n")
	b.WriteString("- \"saldoFinal\": o SALDO FINAL numérico do extrato (0 se não encontrado)\n")
	b.WriteString("- \"transacoes\": lista de objetos {date, description, value, classification, confidenceScore, needsReview}\n")
	return b.String()
}

// auditPrompt builds the senior-auditor prompt over the full transaction set.
func auditPrompt(txs []domain.Transaction, company *domain.CompanyContext) (string, error) {
	payload, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("auditPrompt: marshal transactions: %w", err)
	}

	var b strings.Builder
	b.WriteString("Como um auditor contábil sênior, seu objetivo principal é garantir o equilíbrio da ")
	b.WriteString("partida dobrada e a precisão das classificações. Analise a lista de transações e ")
	b.WriteString("retorne um relatório JSON de findings.\n\n")
	b.WriteString(companyContextBlock(company))
	b.WriteString("\n**PONTOS CRÍTICOS DE VERIFICAÇÃO:**\n")
	b.WriteString("1. Partida Dobrada (ERRO CRÍTICO): se a soma de todos os valores não for zero, reporte um 'error' com a diferença exata.\n")
	b.WriteString("2. Possíveis transferências internas mal classificadas: crie uma 'suggestion'.\n")
	b.WriteString("3. Transações duplicadas (data, valor e descrição similares): crie um 'warning'.\n")
	b.WriteString("4. Classificação incompatível com a descrição: crie uma 'suggestion' de reclassificação.\n")
	b.WriteString("5. Estornos ('Ajustes e Estornos'): procure a transação original e sugira a reclassificação correspondente.\n\n")
	b.WriteString("Cada finding deve ter: type ('error', 'warning' ou 'suggestion'), message e transactionId (SE APLICÁVEL).\n\n")
	b.WriteString("**DADOS PARA ANÁLISE:**\n- Transações: ")
	b.Write(payload)
	b.WriteString("\n\nResponda APENAS com o array JSON de findings, sem cercas de código.\n")
	return b.String(), nil
}

// correctionsPrompt builds the correction-proposal prompt for the findings
// that reference a transaction.
func correctionsPrompt(txs []domain.Transaction, findings []domain.AuditFinding, company *domain.CompanyContext) (string, error) {
	txPayload, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("correctionsPrompt: marshal transactions: %w", err)
	}
	findingPayload, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("correctionsPrompt: marshal findings: %w", err)
	}

	var b strings.Builder
	b.WriteString("Como um auditor contábil sênior, proponha correções para os problemas (findings) que ")
	b.WriteString("GARANTAM O EQUILÍBRIO DA PARTIDA DOBRADA e aumentem a precisão da classificação. ")
	b.WriteString("Retorne um array JSON com uma proposta para cada finding que tenha transactionId.\n\n")
	b.WriteString(companyContextBlock(company))
	b.WriteString("\n**INSTRUÇÕES:**\n")
	b.WriteString("1. Se um finding aponta desequilíbrio, a principal suspeita é uma transferência interna ")
	b.WriteString("mal classificada; reclassifique para \"Transferência Interna\".\n")
	b.WriteString("2. Cada proposta tem: transactionId, reason (explicação concisa) e updates ")
	b.WriteString("(objeto com APENAS os campos a alterar: date, description, value, classification).\n\n")
	b.WriteString("**DADOS PARA ANÁLISE:**\n- Transações: ")
	b.Write(txPayload)
	b.WriteString("\n- Problemas Encontrados: ")
	b.Write(findingPayload)
	b.WriteString("\n\nResponda APENAS com o array JSON de correções; array vazio se nenhum ajuste for necessário.\n")
	return b.String(), nil
}
