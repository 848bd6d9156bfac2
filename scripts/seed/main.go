package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/portfolio/internal/config"
	"github.com/portfolio/internal/db"
	"github.com/portfolio/internal/service"
	"gorm.io/gorm"
)

// 测试数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	reset := flag.Bool("reset", false, "delete existing blogs and contacts before seeding")
	flag.Parse()

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}
	defer db.Close()

	fmt.Println("开始生成测试数据...")

	if *reset {
		if err := resetContent(db.DB); err != nil {
			log.Fatal("清理旧数据失败:", err)
		}
	}

	if err := db.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("创建管理员失败:", err)
	}

	blogs, err := createSampleBlogs(db.DB)
	if err != nil {
		log.Fatal("创建文章失败:", err)
	}
	contacts, err := createSampleContacts(db.DB)
	if err != nil {
		log.Fatal("创建联系消息失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("文章: 新增 %d 篇\n", blogs)
	fmt.Printf("联系消息: 新增 %d 条\n", contacts)
}

func resetContent(gdb *gorm.DB) error {
	if err := gdb.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.Blog{}).Error; err != nil {
		return err
	}
	return gdb.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.Contact{}).Error
}

type sampleBlog struct {
	title    string
	category string
	tags     []string
	cover    string
	content  string
}

var sampleBlogs = []sampleBlog{
	{
		title:    "Designing a Brand System from Scratch",
		category: "Branding",
		tags:     []string{"branding", "design systems"},
		cover:    "https://images.unsplash.com/photo-1561070791-2526d30994b5?auto=format&fit=crop&w=1200&q=80",
		content:  "## Start with the story\n\nEvery identity begins with a clear narrative. Before picking colors, write down **who** the brand talks to and *why* it matters.\n\n- Audience\n- Voice\n- Visual language\n\nOnly then move on to logos and type.",
	},
	{
		title:    "Motion Design Tips for Product Launch Videos",
		category: "Motion",
		tags:     []string{"video", "after effects"},
		cover:    "https://images.unsplash.com/photo-1492691527719-9d1e07e534b4?auto=format&fit=crop&w=1200&q=80",
		content:  "Short launch videos live or die by pacing. Keep each scene under three seconds and let the product breathe.\n\n> Ease in, ease out, and never animate everything at once.",
	},
	{
		title:    "Building This Portfolio with Go and SQLite",
		category: "Engineering",
		tags:     []string{"go", "sqlite", "web"},
		content:  "The site runs on a small Go API backed by SQLite.\n\n```go\nr := gin.New()\nr.GET(\"/ping\", ping)\n```\n\nMedia lives on a CDN so the server stays stateless.",
	},
	{
		title:    "Typography Pairings I Keep Coming Back To",
		category: "Branding",
		tags:     []string{"typography"},
		content:  "A geometric sans for headlines and a humanist serif for body text is a pairing that rarely fails. Test at small sizes first; display sizes forgive a lot.",
	},
	{
		title:    "Café Menus & Packaging: A Case Study",
		category: "Case Study",
		tags:     []string{"packaging", "print", "branding"},
		cover:    "https://images.unsplash.com/photo-1509042239860-f550ce710b93?auto=format&fit=crop&w=1200&q=80",
		content:  "<p>For a neighbourhood café we reworked the menu boards, cups and takeaway bags.</p><p>The result: a <strong>20% lift</strong> in takeaway orders over three months.</p>",
	},
}

// createSampleBlogs 按标题幂等地写入示例文章
func createSampleBlogs(gdb *gorm.DB) (int, error) {
	blogs := service.NewBlogService(gdb)
	created := 0
	for _, sample := range sampleBlogs {
		input := service.BlogInput{
			Title:    sample.title,
			Content:  sample.content,
			Category: sample.category,
			Tags:     sample.tags,
		}
		if sample.cover != "" {
			cover := sample.cover
			input.FeaturedImage = &cover
		}

		if _, err := blogs.Create(input); err != nil {
			if errors.Is(err, service.ErrBlogSlugTaken) {
				continue
			}
			return created, fmt.Errorf("create %q: %w", sample.title, err)
		}
		created++
	}
	return created, nil
}

var sampleContacts = []service.ContactInput{
	{
		Name:    "Amina Rahman",
		Email:   "amina@example.com",
		Phone:   "+880 1712-345678",
		Subject: "Logo refresh",
		Message: "Hi! We're a small bakery looking to refresh our logo and signage before the holidays.",
	},
	{
		Name:    "Lucas Meyer",
		Email:   "lucas.meyer@example.org",
		Subject: "Explainer video",
		Message: "Could you put together a 60 second explainer video for our SaaS onboarding flow?",
	},
	{
		Name:    "Priya Nair",
		Email:   "priya@example.net",
		Phone:   "(415) 555-0199",
		Subject: "Speaking invitation",
		Message: "We'd love to have you speak about brand systems at our design meetup next month.",
	},
}

// createSampleContacts 仅在表为空时写入示例联系消息
func createSampleContacts(gdb *gorm.DB) (int, error) {
	var count int64
	if err := gdb.Model(&db.Contact{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		fmt.Println("联系消息已存在，跳过创建")
		return 0, nil
	}

	contacts := service.NewContactService(gdb)
	for i, sample := range sampleContacts {
		contact, err := contacts.Create(sample)
		if err != nil {
			return i, fmt.Errorf("create contact from %s: %w", sample.Email, err)
		}
		if i == len(sampleContacts)-1 {
			if _, err := contacts.MarkRead(contact.ID); err != nil {
				return i, err
			}
		}
	}
	return len(sampleContacts), nil
}
