package intent

import (
	"regexp"
	"strings"

	"github.com/nfsdasilva237/pipomarket-assistant/internal/assistant/nlp"
)

// Intent is a symbolic tag classifying the purpose of a user message
type Intent string

const (
	IntentPriceConcern   Intent = "price_concern"
	IntentIssueReport    Intent = "issue_report"
	IntentPurchase       Intent = "purchase"
	IntentCancelOrder    Intent = "cancel_order"
	IntentStockCheck     Intent = "stock_check"
	IntentDeliveryInfo   Intent = "delivery_info"
	IntentWarranty       Intent = "warranty"
	IntentBDLService     Intent = "bdl_service"
	IntentOrderLookup    Intent = "order_lookup"
	IntentRecommendation Intent = "recommendation"
	IntentComparison     Intent = "comparison"
	IntentPromotions     Intent = "promotions"
	IntentStartupLookup  Intent = "startup_lookup"
	IntentCategoryBrowse Intent = "category_browse"
	IntentPriceInquiry   Intent = "price_inquiry"
	IntentLocationSearch Intent = "location_search"
	IntentTrending       Intent = "trending"
	IntentNewArrivals    Intent = "new_arrivals"
	IntentHelp           Intent = "help"
	IntentStats          Intent = "stats"
	IntentGreeting       Intent = "greeting"
	IntentThanks         Intent = "thanks"
	IntentGoodbye        Intent = "goodbye"
	IntentProductSearch  Intent = "product_search"
)

// Sentiment mirrors the conversation package's classification without
// importing it, to keep the classifier a leaf.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

type rule struct {
	intent  Intent
	pattern *regexp.Regexp
	// guard, when set, must also pass for the rule to fire
	guard func(entities nlp.Entities, sentiment Sentiment) bool
}

// Classifier maps a message to one intent using ordered rules. The FIRST
// matching rule wins; later rules are intentionally shadowed by earlier
// ones, so the order below is part of the contract.
type Classifier struct {
	rules []rule
}

func negativeOnly(_ nlp.Entities, s Sentiment) bool {
	return s == SentimentNegative
}

// NewClassifier creates the intent classifier with its fixed rule order
func NewClassifier() *Classifier {
	return &Classifier{
		rules: []rule{
			// 1. Sentiment-qualified complaints
			{IntentPriceConcern, regexp.MustCompile(`(?i)trop cher|prix (?:trop )?(?:élevé|eleve)|hors budget|pas les moyens`), negativeOnly},
			{IntentIssueReport, regexp.MustCompile(`(?i)problème|probleme|bug|erreur|défectueux|defectueux|cassé|casse|ne (?:marche|fonctionne) pas|réclamation|reclamation|plainte`), negativeOnly},

			// 2. Transactional intents
			{IntentPurchase, regexp.MustCompile(`(?i)\b(?:acheter|commander|je prends|je veux acheter|ajoute(?:r)? au panier|passe(?:r)? (?:la |une )?commande)\b`), nil},
			{IntentCancelOrder, regexp.MustCompile(`(?i)annul(?:er|e|ation)|rembours(?:er|ement)|retourner (?:ma |la )?commande`), nil},

			// 3. Informational intents
			{IntentStockCheck, regexp.MustCompile(`(?i)en stock|disponible|disponibilité|disponibilite|encore là|encore la|reste(?:-t-il| t il)`), nil},
			{IntentDeliveryInfo, regexp.MustCompile(`(?i)livraison|livrer|délai|delai|expédition|expedition|combien de (?:temps|jours) pour`), nil},
			{IntentWarranty, regexp.MustCompile(`(?i)garantie|garanti|sav|service après|service apres`), nil},

			// 4. Domain-specific intents
			{IntentBDLService, regexp.MustCompile(`(?i)bdl|studio|logo|design graphique|identité visuelle|identite visuelle|montage (?:vidéo|video)|création de site|creation de site`), nil},
			{IntentOrderLookup, regexp.MustCompile(`(?i)m(?:a|es) commande|suivi de (?:ma )?commande|où (?:est|en est)|ou (?:est|en est) ma commande|statut de (?:ma )?commande`), nil},
			{IntentRecommendation, regexp.MustCompile(`(?i)recommand|conseill|suggère|suggere|suggestion|que me proposes|pour moi`), nil},
			{IntentComparison, regexp.MustCompile(`(?i)compar|différence entre|difference entre|versus|\bvs\b|lequel (?:est|choisir)`), nil},
			{IntentPromotions, regexp.MustCompile(`(?i)promo|réduction|reduction|solde|remise|code promo|bon plan`), nil},
			{IntentStartupLookup, regexp.MustCompile(`(?i)startup|vendeur|boutique de|qui vend|entreprise`), nil},
			{IntentCategoryBrowse, regexp.MustCompile(`(?i)catégorie|categorie|rayon|quels (?:types|genres) de`), nil},
			{IntentPriceInquiry, regexp.MustCompile(`(?i)combien (?:coûte|coute|ça coûte|ca coute)|quel (?:est le )?prix|c'est combien|cest combien`), nil},
			{IntentLocationSearch, regexp.MustCompile(`(?i)près de|pres de|proche de|autour de|dans ma ville|à côté|a cote`), nil},
			{IntentTrending, regexp.MustCompile(`(?i)tendance|populaire|meilleures ventes|les plus vendus|à la mode|a la mode`), nil},
			{IntentNewArrivals, regexp.MustCompile(`(?i)nouveau(?:té|te)?s?\b|récent|recent|dernières arrivées|dernieres arrivees|arrivage`), nil},
			{IntentHelp, regexp.MustCompile(`(?i)\baide\b|aidez|comment (?:ça marche|ca marche|faire|utiliser)|je ne comprends pas`), nil},
			{IntentStats, regexp.MustCompile(`(?i)statistique|mes chiffres|mon activité|mon activite|mon profil|mes points`), nil},

			// 5. Social intents, anchored at message start
			{IntentGreeting, regexp.MustCompile(`(?i)^\s*(?:bonjour|bonsoir|salut|hello|hey|coucou)\b`), nil},
			{IntentThanks, regexp.MustCompile(`(?i)^\s*(?:merci|thanks|super merci)\b`), nil},
			{IntentGoodbye, regexp.MustCompile(`(?i)^\s*(?:au revoir|a bientôt|a bientot|à bientôt|bye|bonne journée|bonne journee)\b`), nil},
		},
	}
}

// Detect returns the intent of a message. Rules run in order over the raw
// message; the default when nothing matches is a generic product search.
func (c *Classifier) Detect(message string, entities nlp.Entities, sentiment Sentiment) Intent {
	message = strings.TrimSpace(message)
	if message == "" {
		return IntentHelp
	}

	for _, r := range c.rules {
		if !r.pattern.MatchString(message) {
			continue
		}
		if r.guard != nil && !r.guard(entities, sentiment) {
			continue
		}
		return r.intent
	}

	return IntentProductSearch
}
