package service

import (
	"strings"
	"sync"

	"github.com/freshcart-next/internal/models"
	"github.com/freshcart-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLineView 购物车行视图（响应用）
type CartLineView struct {
	LineID    string       `json:"line_id"`
	ProductID uint         `json:"product_id"`
	Name      string       `json:"name"`
	Brand     string       `json:"brand"`
	Category  string       `json:"category"`
	UnitPrice models.Money `json:"unit_price"`
	Quantity  int          `json:"quantity"`
	LineTotal models.Money `json:"line_total"`
}

// CartView 购物车视图
type CartView struct {
	Items     []CartLineView `json:"items"`
	Subtotal  models.Money   `json:"subtotal"`
	ItemCount int            `json:"item_count"`
}

// AddCartItemInput 加购输入
type AddCartItemInput struct {
	UserID    uint
	ProductID uint
	Quantity  int
}

type cartLoadFlight struct {
	done chan struct{}
	view *CartView
	err  error
}

// CartService 购物车服务
// 同一用户同一时刻至多一个在途读库；重复加载挂在在途结果上。
// 写操作按用户互斥，保证按到达顺序串行落库。
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository

	mu        sync.Mutex
	userLocks map[uint]*sync.Mutex
	loads     map[uint]*cartLoadFlight
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		userLocks:   make(map[uint]*sync.Mutex),
		loads:       make(map[uint]*cartLoadFlight),
	}
}

func (s *CartService) userLock(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Load 加载用户购物车，重复调用合并到同一次在途读库
func (s *CartService) Load(userID uint) (*CartView, error) {
	if userID == 0 {
		return nil, ErrCartLineNotFound
	}

	s.mu.Lock()
	if flight, ok := s.loads[userID]; ok {
		s.mu.Unlock()
		<-flight.done
		return flight.view, flight.err
	}
	flight := &cartLoadFlight{done: make(chan struct{})}
	s.loads[userID] = flight
	s.mu.Unlock()

	flight.view, flight.err = s.loadFromStore(userID)
	close(flight.done)

	s.mu.Lock()
	delete(s.loads, userID)
	s.mu.Unlock()

	return flight.view, flight.err
}

func (s *CartService) loadFromStore(userID uint) (*CartView, error) {
	items, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	return buildCartView(items), nil
}

func buildCartView(items []models.CartItem) *CartView {
	view := &CartView{Items: make([]CartLineView, 0, len(items))}
	subtotal := decimal.Zero
	for _, item := range items {
		lineTotal := item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		view.ItemCount += item.Quantity
		view.Items = append(view.Items, CartLineView{
			LineID:    item.LineID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Brand:     item.Brand,
			Category:  item.Category,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: models.NewMoneyFromDecimal(lineTotal),
		})
	}
	view.Subtotal = models.NewMoneyFromDecimal(Round2(subtotal))
	return view
}

// ListItems 获取购物车原始行（结账快照用）
func (s *CartService) ListItems(userID uint) ([]models.CartItem, error) {
	return s.cartRepo.ListByUser(userID)
}

// AddItem 加购（同商品合并数量，快照商品名称与单价）
func (s *CartService) AddItem(input AddCartItemInput) error {
	if input.UserID == 0 || input.ProductID == 0 {
		return ErrProductNotAvailable
	}
	if input.Quantity < 1 {
		return ErrCartQuantityInvalid
	}

	lock := s.userLock(input.UserID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotAvailable
	}

	existing, err := s.cartRepo.GetByUserAndProduct(input.UserID, input.ProductID)
	if err != nil {
		return err
	}
	if existing != nil {
		return s.cartRepo.UpdateQuantity(input.UserID, existing.LineID, existing.Quantity+input.Quantity)
	}

	item := &models.CartItem{
		LineID:    uuid.NewString(),
		UserID:    input.UserID,
		ProductID: input.ProductID,
		Name:      product.Name,
		Brand:     product.Brand,
		Category:  product.Category,
		UnitPrice: product.PriceAmount,
		Quantity:  input.Quantity,
	}
	return s.cartRepo.Create(item)
}

// UpdateQuantity 更新行数量
func (s *CartService) UpdateQuantity(userID uint, lineID string, quantity int) error {
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return ErrCartLineIDRequired
	}
	if quantity < 1 {
		return ErrCartQuantityInvalid
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.cartRepo.GetByLineID(userID, lineID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCartLineNotFound
	}
	return s.cartRepo.UpdateQuantity(userID, lineID, quantity)
}

// RemoveItem 删除行
func (s *CartService) RemoveItem(userID uint, lineID string) error {
	lineID = strings.TrimSpace(lineID)
	if lineID == "" {
		return ErrCartLineIDRequired
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.cartRepo.GetByLineID(userID, lineID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCartLineNotFound
	}
	return s.cartRepo.DeleteByLineID(userID, lineID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.cartRepo.ClearByUser(userID)
}
