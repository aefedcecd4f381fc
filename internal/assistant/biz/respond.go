package biz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/conversation"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/intent"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/nlp"
	catalogtypes "github.com/nfsdasilva237/pipomarket-assistant/internal/catalog/types"
	"github.com/nfsdasilva237/pipomarket-assistant/internal/recommend"
)

const maxListedItems = 5

var timeNow = time.Now

// respond selects and fills a reply template for the classified intent.
// It never returns an empty text.
func (uc *AssistantUseCase) respond(
	ctx context.Context,
	userID string,
	tag intent.Intent,
	entities nlp.Entities,
	sentiment intent.Sentiment,
	products []*catalogtypes.Product,
	tracker *conversation.Tracker,
) *Reply {
	reply := &Reply{
		Intent:    tag,
		Sentiment: sentiment,
		Entities:  entities,
	}

	switch tag {
	case intent.IntentGreeting:
		reply.Text = "Bonjour ! Je suis l'assistant PipoMarket. Je peux vous aider à trouver des produits, suivre vos commandes ou découvrir les startups locales."

	case intent.IntentThanks:
		reply.Text = "Avec plaisir ! N'hésitez pas si vous cherchez autre chose."

	case intent.IntentGoodbye:
		reply.Text = "À bientôt sur PipoMarket !"

	case intent.IntentHelp:
		reply.Text = "Je peux chercher des produits, comparer des articles, vérifier un stock, suivre une commande ou vous recommander des nouveautés. Que souhaitez-vous faire ?"
		reply.Suggestions = []string{"montre-moi les tendances", "mes commandes", "les promotions"}

	case intent.IntentPriceConcern:
		reply.Text = "Je comprends, le budget compte. Voici des options plus abordables :"
		cheaper := entities
		cheaper.SortBy = nlp.SortPriceAsc
		reply.Recommendations = candidatesFromProducts(uc.engine.Contextual(cheaper, products, maxListedItems), "option plus abordable")
		reply.Text += formatCandidates(reply.Recommendations, 0)

	case intent.IntentIssueReport:
		reply.Text = "Désolé pour ce désagrément. Votre signalement est transmis à l'équipe support, qui vous recontactera rapidement."
		reply.Actions = []string{"contacter le support", "voir mes commandes"}

	case intent.IntentPurchase:
		reply.Text = "Très bon choix ! Ajoutez l'article à votre panier pour finaliser la commande."
		reply.Actions = []string{"ajouter au panier", "voir le panier"}

	case intent.IntentCancelOrder:
		reply.Text = "Pour annuler une commande, ouvrez son détail dans Mes commandes. L'annulation est possible tant qu'elle n'est pas expédiée."
		reply.Actions = []string{"voir mes commandes"}

	case intent.IntentStockCheck:
		reply.Text = uc.stockAnswer(entities, products)

	case intent.IntentDeliveryInfo:
		reply.Text = "La livraison prend 1 à 3 jours ouvrés à Yaoundé et Douala, et 3 à 5 jours pour les autres villes."

	case intent.IntentWarranty:
		reply.Text = "Les produits sont garantis par chaque startup partenaire. La durée exacte figure sur la fiche produit ; le support PipoMarket relaie toute demande de SAV."

	case intent.IntentBDLService:
		reply.Text = "BDL Studio réalise logos, identités visuelles, sites web et montages vidéo. Décrivez votre projet pour recevoir un devis."
		reply.Actions = []string{"demander un devis BDL"}

	case intent.IntentOrderLookup:
		reply.Text = uc.orderLookupAnswer(ctx, userID)
		reply.Actions = []string{"voir mes commandes"}

	case intent.IntentRecommendation:
		reply.Recommendations = uc.engine.Personalized(ctx, userID, products, maxListedItems)
		if len(reply.Recommendations) == 0 {
			reply.Text = "Je n'ai pas encore de recommandation pour vous, mais explorez les tendances du moment !"
		} else {
			reply.Text = "Voici ce que je vous recommande :" + formatCandidates(reply.Recommendations, 0)
		}

	case intent.IntentComparison:
		reply.Text = uc.comparisonAnswer(entities, products)

	case intent.IntentPromotions:
		reply.Text = "Les promotions en cours sont dans l'onglet Promos. Les meilleures offres partent vite !"
		reply.Actions = []string{"voir les promotions"}

	case intent.IntentStartupLookup:
		reply.Text = uc.startupAnswer(ctx, entities)

	case intent.IntentTrending:
		reply.Recommendations = uc.engine.Popular(products, maxListedItems)
		reply.Text = "Les articles les plus populaires en ce moment :" + formatCandidates(reply.Recommendations, 0)

	case intent.IntentNewArrivals:
		newest := entities
		newest.SortBy = nlp.SortNewest
		reply.Recommendations = candidatesFromProducts(uc.engine.Contextual(newest, products, maxListedItems), "nouveauté")
		reply.Text = "Les dernières arrivées :" + formatCandidates(reply.Recommendations, 0)

	case intent.IntentStats:
		reply.Text = uc.statsAnswer(ctx, userID)

	case intent.IntentPriceInquiry, intent.IntentCategoryBrowse, intent.IntentLocationSearch, intent.IntentProductSearch:
		matched := uc.engine.Contextual(entities, products, maxListedItems*2)
		reply.Recommendations = candidatesFromProducts(matched, "correspond à votre recherche")
		if len(matched) == 0 {
			reply.Text = "Je n'ai rien trouvé pour cette recherche. Essayez avec d'autres mots ou élargissez votre budget."
		} else {
			shown := reply.Recommendations
			overflow := 0
			if len(shown) > maxListedItems {
				overflow = len(shown) - maxListedItems
				shown = shown[:maxListedItems]
			}
			reply.Recommendations = shown
			reply.Text = "Voici ce que j'ai trouvé :" + formatCandidates(shown, overflow)
		}
		reply.Clarification = tracker.Clarify(len(matched))

	default:
		reply.Text = "Je n'ai pas bien compris, mais je peux chercher des produits ou des startups pour vous. Reformulez votre demande ?"
	}

	if reply.Text == "" {
		reply.Text = "Je suis là pour vous aider à explorer PipoMarket. Que cherchez-vous ?"
	}

	reply.Suggestions = uc.fillSuggestions(reply, products)
	return reply
}

// stockAnswer resolves the referenced product and reports availability
func (uc *AssistantUseCase) stockAnswer(entities nlp.Entities, products []*catalogtypes.Product) string {
	if len(entities.ProductIDs) > 0 {
		for _, p := range products {
			if p.ID == entities.ProductIDs[len(entities.ProductIDs)-1] {
				if p.Stock > 0 {
					return fmt.Sprintf("Oui, %s est disponible (%d en stock).", p.Name, p.Stock)
				}
				return fmt.Sprintf("Malheureusement %s est en rupture de stock pour le moment.", p.Name)
			}
		}
	}
	return "Dites-moi quel produit vous intéresse et je vérifie sa disponibilité."
}

func (uc *AssistantUseCase) orderLookupAnswer(ctx context.Context, userID string) string {
	if userID == "" {
		return "Connectez-vous pour consulter vos commandes."
	}
	profile := uc.profiles.GetProfile(ctx, userID)
	if profile == nil || len(profile.Orders) == 0 {
		return "Vous n'avez pas encore de commande. Lancez-vous !"
	}
	last := profile.Orders[len(profile.Orders)-1]
	return fmt.Sprintf("Votre dernière commande (%s, %.0f FCFA) est au statut « %s ». Le détail complet est dans Mes commandes.",
		last.ProductName, last.Total, last.Status)
}

// comparisonAnswer compares the two referenced products. Works with
// missing ratings; prices drive the verdict.
func (uc *AssistantUseCase) comparisonAnswer(entities nlp.Entities, products []*catalogtypes.Product) string {
	if len(entities.ProductIDs) < 2 {
		return "Citez-moi deux produits et je vous les compare (prix, note, vendeur)."
	}

	byID := make(map[string]*catalogtypes.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	a := byID[entities.ProductIDs[0]]
	b := byID[entities.ProductIDs[1]]
	if a == nil || b == nil {
		return "Je ne retrouve pas ces deux produits dans le catalogue."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s coûte %.0f FCFA et %s coûte %.0f FCFA.", a.Name, a.Price, b.Name, b.Price)

	diff := math.Abs(a.Price - b.Price)
	switch {
	case a.Price < b.Price:
		fmt.Fprintf(&sb, " %s est moins cher de %.0f FCFA.", a.Name, diff)
	case b.Price < a.Price:
		fmt.Fprintf(&sb, " %s est moins cher de %.0f FCFA.", b.Name, diff)
	default:
		sb.WriteString(" Les deux sont au même prix.")
	}

	switch {
	case a.Rating > b.Rating:
		fmt.Fprintf(&sb, " Côté avis, %s est mieux noté (%.1f contre %.1f).", a.Name, a.Rating, b.Rating)
	case b.Rating > a.Rating:
		fmt.Fprintf(&sb, " Côté avis, %s est mieux noté (%.1f contre %.1f).", b.Name, b.Rating, a.Rating)
	}

	return sb.String()
}

func (uc *AssistantUseCase) startupAnswer(ctx context.Context, entities nlp.Entities) string {
	startups, err := uc.catalog.ListStartups(ctx)
	if err != nil || len(startups) == 0 {
		return "PipoMarket rassemble des dizaines de startups camerounaises. Parcourez l'annuaire pour les découvrir."
	}
	if len(entities.StartupIDs) > 0 {
		for _, s := range startups {
			if s.ID == entities.StartupIDs[len(entities.StartupIDs)-1] {
				if s.City != "" {
					return fmt.Sprintf("%s est une startup basée à %s. Retrouvez tous ses produits sur sa boutique.", s.Name, s.City)
				}
				return fmt.Sprintf("%s est une startup partenaire. Retrouvez tous ses produits sur sa boutique.", s.Name)
			}
		}
	}
	return fmt.Sprintf("Nous travaillons avec %d startups locales. Cherchez-en une par nom ou par ville !", len(startups))
}

func (uc *AssistantUseCase) statsAnswer(ctx context.Context, userID string) string {
	if userID == "" {
		return "Connectez-vous pour voir votre activité."
	}
	profile := uc.profiles.GetProfile(ctx, userID)
	if profile == nil {
		return "Votre profil est encore vide. Explorez le catalogue pour commencer !"
	}
	return fmt.Sprintf("Vous avez passé %d commandes pour un total de %.0f FCFA. Score d'activité : %.0f/100 (%s).",
		len(profile.Orders), profile.Spending.LifetimeValue, profile.Engagement, profile.Spending.Category)
}

// fillSuggestions derives up to three similar-product leads from the top
// recommendation.
func (uc *AssistantUseCase) fillSuggestions(reply *Reply, products []*catalogtypes.Product) []string {
	if len(reply.Suggestions) > 0 {
		return reply.Suggestions
	}
	if len(reply.Recommendations) == 0 {
		return nil
	}

	top := reply.Recommendations[0]
	similar := uc.engine.Similar(top.Product.ID, products, 3)
	suggestions := make([]string, 0, len(similar))
	for _, c := range similar {
		suggestions = append(suggestions, c.Product.Name)
	}
	return suggestions
}

// formatCandidates renders up to five items, with a "+N more" style tail
func formatCandidates(candidates []*recommend.Candidate, overflow int) string {
	if len(candidates) == 0 {
		return ""
	}

	var sb strings.Builder
	shown := candidates
	if len(shown) > maxListedItems {
		overflow += len(shown) - maxListedItems
		shown = shown[:maxListedItems]
	}
	for _, c := range shown {
		fmt.Fprintf(&sb, "\n• %s — %.0f FCFA", c.Product.Name, c.Product.Price)
		if len(c.Reasons) > 0 {
			fmt.Fprintf(&sb, " (%s)", c.Reasons[0])
		}
	}
	if overflow > 0 {
		fmt.Fprintf(&sb, "\n... et %d autres", overflow)
	}
	return sb.String()
}

func candidatesFromProducts(products []*catalogtypes.Product, reason string) []*recommend.Candidate {
	candidates := make([]*recommend.Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, &recommend.Candidate{
			Product: p,
			Score:   p.Rating,
			Reasons: []string{reason},
		})
	}
	return candidates
}
