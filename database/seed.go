package database

import (
	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var menuCatalog = []models.MenuItem{
	{ID: "c1", Name: "Double Espresso", Price: 28, Category: "Coffee"},
	{ID: "c2", Name: "Long Black", Price: 32, Category: "Coffee"},
	{ID: "c5", Name: "Flat White", Price: 38, Category: "Coffee"},
	{ID: "c6", Name: "Caffè Latte", Price: 38, Category: "Coffee"},
	{ID: "c7", Name: "Cappuccino", Price: 38, Category: "Coffee"},
	{ID: "c8", Name: "Caffè Mocha", Price: 43, Category: "Coffee"},
	{ID: "c13", Name: "Cold Brew CoHee", Price: 68, Category: "Coffee"},
	{ID: "c14", Name: "Affogato", Price: 58, Category: "Coffee"},
	{ID: "nc1", Name: "Hojicha Latte", ChineseName: "焙茶拿鐵", Price: 38, Category: "Beverages"},
	{ID: "nc2", Name: "Green Tea Latte", ChineseName: "綠茶拿鐵", Price: 38, Category: "Beverages"},
	{ID: "nc5", Name: "Rich Chocolate", Price: 43, Category: "Beverages"},
	{ID: "nc7", Name: "Lemonade", Price: 38, Category: "Beverages"},
	{ID: "s1", Name: "Thick Egg & Ham", ChineseName: "厚蛋.火腿.芝士", Price: 58, Category: "Sandwich"},
	{ID: "s4", Name: "Katsu Deluxe", ChineseName: "吉利豬扒.芝士.木魚", Price: 75, Category: "Sandwich"},
	{ID: "s7", Name: "Garden Egg Salad", ChineseName: "蛋沙律.芝士.疏菜", Price: 58, Category: "Sandwich"},
	{ID: "r1", Name: "Salmon Fried Rice", ChineseName: "三文魚.香蔥.蛋.炒飯", Price: 73, Category: "Rice Bowl"},
	{ID: "r4", Name: "Beef Rice Bowl", ChineseName: "牛肉飯", Price: 93, Category: "Rice Bowl"},
	{ID: "r7", Name: "Unagi Rice Premium", ChineseName: "原條鰻魚，玉子燒.紫菜飯", Price: 98, Category: "Rice Bowl"},
	{ID: "sd1", Name: "Karaage Chicken (4pcs)", ChineseName: "唐揚炸雞4件", Price: 53, Category: "Sides"},
	{ID: "sd3", Name: "Sweet Potato Fries", Price: 42, Category: "Sides"},
	{ID: "p1", Name: "Dill Salmon Angel Hair", Price: 98, Category: "Pasta"},
	{ID: "p2", Name: "Truffle Egg Linguine", Price: 98, Category: "Pasta"},
	{ID: "d1", Name: "Basque Burnt Cheesecake", Price: 48, Category: "Dessert"},
	{ID: "d2", Name: "Japanese Caramel Pudding", Price: 42, Category: "Dessert"},
}

var productCatalog = []models.Product{
	{ID: "pb1", Name: "House Blend Beans 250g", Description: "Medium roast, chocolate and nut notes", Price: 128, Category: models.ProductBeans, InStock: true, Featured: true},
	{ID: "pb2", Name: "Ethiopia Yirgacheffe 200g", Description: "Light roast, floral and citrus", Price: 158, Category: models.ProductBeans, InStock: true},
	{ID: "pe1", Name: "Pour-over Kettle", Description: "Gooseneck kettle, 600ml", Price: 328, Category: models.ProductEquipment, InStock: true},
	{ID: "pe2", Name: "Hand Grinder", Description: "Ceramic burr hand grinder", Price: 268, Category: models.ProductEquipment, InStock: false},
	{ID: "pa1", Name: "CoHee Tumbler", Description: "Double-wall tumbler, 350ml", Price: 148, Category: models.ProductAccessories, InStock: true, Featured: true},
}

// SeedCatalog mengisi menu & produk. Aman dijalankan berulang.
func SeedCatalog(db *gorm.DB) error {
	menu := make([]models.MenuItem, len(menuCatalog))
	copy(menu, menuCatalog)
	for i := range menu {
		menu[i].Available = true
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&menu).Error; err != nil {
		utils.ErrorLogger.Printf("Error seeding menu: %v", err)
		return err
	}

	products := make([]models.Product, len(productCatalog))
	copy(products, productCatalog)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error; err != nil {
		utils.ErrorLogger.Printf("Error seeding products: %v", err)
		return err
	}

	utils.InfoLogger.Printf("Catalog seeded: %d menu items, %d products", len(menu), len(products))
	return nil
}
