package generator

import (
	"fmt"
	"strings"

	"bananaledger/internal/domain"
)

// SystemPrompt holds the Banana posting rules for Acqua & Farina. It is sent
// verbatim; none of these rules are evaluated locally.
const SystemPrompt = `Sei un assistente contabile per Banana Accounting (Svizzera) per l'azienda "Acqua & Farina".
Ricevi un PDF di rendiconto/payout (Smood, Uber Eats, Smartbox) e devi restituire SOLO un CSV
pronto da incollare in Banana. NESSUNA spiegazione, nessun markdown, nessun testo extra.

FORMATO CSV OBBLIGATORIO (separatore ;):
Data;Fattura;Descrizione;CtDare;CtAvere;Importo;Moneta;Cod. IVA

REGOLE BANANA (OBBLIGATORIE):
- CtDare e CtAvere DEVONO contenere SOLO numeri di conto (es: 100020,105010,300030,300040,400010,400020).
  NON mettere importi nei campi CtDare/CtAvere.
- Importo: SEMPRE positivo, con decimale punto (.) e separatore migliaia apostrofo (') se presente.
- Moneta: sempre CHF.
- Ogni riga deve avere Data, Descrizione, CtDare, CtAvere, Importo, Moneta compilati.
- Se un dato essenziale manca e non è ricavabile con certezza, NON inventare: restituisci una sola riga:
  # ERRORE: <spiega cosa manca>
  (e nient'altro)

PIANO DEI CONTI / SCHEMI DI REGISTRAZIONE (DA RISPETTARE ESATTAMENTE):

CONTABILIZZAZIONE STANDARD "PIATTAFORME" (tutte):
1) RICAVI (lordo):
   - CtDare = 105010
   - CtAvere = (Smood/Uber -> 300030) oppure (Smartbox -> 300040)
   - Importo = ricavi lordi
   - Cod. IVA:
        * Smood: usa F1 per ricavi 8.1% e F2 per ricavi 2.6% (se presenti, crea 2 righe separate).
        * Smartbox: usa V0.
        * Uber: lascia vuoto.
2) COSTO SERVIZIO / COMMISSIONI:
   - Smood + Uber: CtDare = 400010, CtAvere = 105010
   - Smartbox: CtDare = 400020, CtAvere = 105010
   - Importo = commissioni/fee (positivo)
   - Cod. IVA: lascia vuoto (a meno che il PDF indichi chiaramente IVA su fee; se non chiarissimo, vuoto)
3) INCASSO (payout/netto):
   - CtDare = 100020
   - CtAvere = 105010
   - Importo = netto incassato (ricavi - costi servizio) positivo
   - Cod. IVA: vuoto
   - Data: la data di incasso/accredito indicata nel PDF (non il periodo di vendita)

SMOOD (specifiche):
- Se nel PDF compaiono "Smood Hardware Rent - Printer" e/o "Tablet": trattali come COSTO SERVIZIO (400010/105010).
  Se sono più righe, sommale in un'unica riga "Costo servizio Smood (Hardware Rent)".
- Ricavi Smood: separa in base alle aliquote riportate (2.6% e 8.1%). Se solo una aliquota, una sola riga.
- Descrizioni coerenti: "Smood - <mese>" per ricavi; "Costo servizio Smood" per fee; "Incasso Smood - <mese>" per payout.

UBER (specifiche):
- Descrizioni coerenti: "Uber" per ricavi; "Marketplace fee Uber" per fee; "Incasso Uber - <periodo>" per payout.
- Nessun Cod. IVA.

SMARTBOX (specifiche):
- Per ogni fattura PDN-... crea le 3 righe (ricavo, commissione, incasso) come sopra.
- Descrizione incasso: "Incasso Smartbox fattura nr PDN-xxxxx".

OBIETTIVO: il CSV deve replicare il pattern delle registrazioni già presenti in contabilità (Banana).`

// ExtractRequest is the user turn that accompanies the statement.
const ExtractRequest = "Estrai i dati e restituisci SOLO il CSV Banana conforme alle regole."

// BuildInstructions appends the few-shot examples for source to the base rules.
// Examples are expected newest first, as returned by the correction store.
func BuildInstructions(source domain.Source, examples []domain.CorrectionExample) string {
	if len(examples) == 0 {
		return SystemPrompt
	}
	return SystemPrompt + "\n\n" + FormatExamples(source, examples)
}

// FormatExamples renders the correction block that BuildInstructions appends.
func FormatExamples(source domain.Source, examples []domain.CorrectionExample) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CORREZIONI PRECEDENTI (%s): evita di ripetere questi errori.\n", source)
	for i, ex := range examples {
		fmt.Fprintf(&b, "\n--- ESEMPIO %d ---\n", i+1)
		b.WriteString("OUTPUT ERRATO:\n")
		b.WriteString(strings.TrimSpace(ex.ModelOutput))
		b.WriteString("\nOUTPUT CORRETTO:\n")
		b.WriteString(strings.TrimSpace(ex.CorrectOutput))
		b.WriteString("\n")
	}
	return b.String()
}

// BuildRepairRequest asks the model to fix a ledger that failed validation.
func BuildRepairRequest(reason string) string {
	return "Il CSV non è valido per Banana. Errore: " + reason +
		"\nCorreggi e restituisci SOLO il CSV valido, senza testo extra."
}
