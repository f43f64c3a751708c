package catalog

import "strings"

// Catalog categories.
const (
	CategoryVegetables = "vegetables"
	CategoryFruits     = "fruits"
	CategoryMeat       = "meat"
	CategoryFish       = "fish"
	CategoryDairy      = "dairy"
	CategoryProtein    = "protein"
	CategoryGrains     = "grains"
	CategoryPantry     = "pantry"
	CategoryHerbs      = "herbs"
	CategoryCanned     = "canned"
	CategoryOther      = "other"
)

// Categorize guesses a catalog category from an ingredient name. Exact names
// are checked first, then keywords in order. Unknown names are "other".
func Categorize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return CategoryOther
	}
	if cat, ok := exactNames[n]; ok {
		return cat
	}
	for _, k := range keywords {
		if strings.Contains(n, k.word) {
			return k.category
		}
	}
	return CategoryOther
}

var exactNames = map[string]string{
	"corn":     CategoryVegetables,
	"peas":     CategoryVegetables,
	"beans":    CategoryVegetables,
	"tomato":   CategoryVegetables,
	"tomatoes": CategoryVegetables,
	"pepper":   CategoryPantry,
	"salt":     CategoryPantry,
	"garlic":   CategoryPantry,
	"ginger":   CategoryPantry,
	"eggs":     CategoryDairy,
	"egg":      CategoryDairy,
	"tofu":     CategoryProtein,
	"tempeh":   CategoryProtein,
	"seitan":   CategoryProtein,
	"lentils":  CategoryProtein,
	"olives":   CategoryCanned,
	"pickles":  CategoryCanned,
	"bread":    CategoryGrains,
}

// keywords is ordered so that more specific words win: "canned tomatoes" is
// canned, "peanut butter" is pantry rather than dairy.
var keywords = []struct {
	word     string
	category string
}{
	{"canned", CategoryCanned},
	{"tinned", CategoryCanned},
	{"jarred", CategoryCanned},
	{"peanut butter", CategoryPantry},
	{"almond milk", CategoryDairy},
	{"oat milk", CategoryDairy},
	{"soy sauce", CategoryPantry},
	{"black pepper", CategoryPantry},
	{"bell pepper", CategoryVegetables},
	{"ground beef", CategoryMeat},

	// Fish
	{"salmon", CategoryFish},
	{"tuna", CategoryFish},
	{"cod", CategoryFish},
	{"shrimp", CategoryFish},
	{"prawn", CategoryFish},
	{"trout", CategoryFish},
	{"sardine", CategoryFish},
	{"fish", CategoryFish},

	// Meat
	{"chicken", CategoryMeat},
	{"beef", CategoryMeat},
	{"pork", CategoryMeat},
	{"lamb", CategoryMeat},
	{"turkey", CategoryMeat},
	{"bacon", CategoryMeat},
	{"sausage", CategoryMeat},
	{"ham", CategoryMeat},
	{"steak", CategoryMeat},
	{"mince", CategoryMeat},

	// Dairy
	{"milk", CategoryDairy},
	{"cheese", CategoryDairy},
	{"yogurt", CategoryDairy},
	{"yoghurt", CategoryDairy},
	{"butter", CategoryDairy},
	{"cream", CategoryDairy},

	// Herbs
	{"basil", CategoryHerbs},
	{"parsley", CategoryHerbs},
	{"cilantro", CategoryHerbs},
	{"coriander", CategoryHerbs},
	{"oregano", CategoryHerbs},
	{"thyme", CategoryHerbs},
	{"rosemary", CategoryHerbs},
	{"mint", CategoryHerbs},
	{"dill", CategoryHerbs},
	{"sage", CategoryHerbs},
	{"chives", CategoryHerbs},

	// Fruits
	{"apple", CategoryFruits},
	{"banana", CategoryFruits},
	{"orange", CategoryFruits},
	{"lemon", CategoryFruits},
	{"lime", CategoryFruits},
	{"berry", CategoryFruits},
	{"berries", CategoryFruits},
	{"grape", CategoryFruits},
	{"avocado", CategoryFruits},
	{"mango", CategoryFruits},
	{"pear", CategoryFruits},
	{"peach", CategoryFruits},
	{"melon", CategoryFruits},
	{"pineapple", CategoryFruits},
	{"cherr", CategoryFruits},

	// Vegetables
	{"carrot", CategoryVegetables},
	{"onion", CategoryVegetables},
	{"potato", CategoryVegetables},
	{"broccoli", CategoryVegetables},
	{"spinach", CategoryVegetables},
	{"lettuce", CategoryVegetables},
	{"cucumber", CategoryVegetables},
	{"zucchini", CategoryVegetables},
	{"cabbage", CategoryVegetables},
	{"kale", CategoryVegetables},
	{"celery", CategoryVegetables},
	{"mushroom", CategoryVegetables},
	{"squash", CategoryVegetables},
	{"cauliflower", CategoryVegetables},
	{"asparagus", CategoryVegetables},
	{"leek", CategoryVegetables},

	// Grains
	{"rice", CategoryGrains},
	{"pasta", CategoryGrains},
	{"spaghetti", CategoryGrains},
	{"noodle", CategoryGrains},
	{"bread", CategoryGrains},
	{"oat", CategoryGrains},
	{"quinoa", CategoryGrains},
	{"couscous", CategoryGrains},
	{"tortilla", CategoryGrains},
	{"bagel", CategoryGrains},

	// Pantry
	{"oil", CategoryPantry},
	{"vinegar", CategoryPantry},
	{"flour", CategoryPantry},
	{"sugar", CategoryPantry},
	{"honey", CategoryPantry},
	{"spice", CategoryPantry},
	{"sauce", CategoryPantry},
	{"stock", CategoryPantry},
	{"broth", CategoryPantry},
	{"cumin", CategoryPantry},
	{"paprika", CategoryPantry},
	{"cinnamon", CategoryPantry},
}
